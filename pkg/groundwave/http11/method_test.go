package http11

import "testing"

func TestParseMethodID(t *testing.T) {
	cases := []struct {
		raw  string
		want uint8
	}{
		{"GET", MethodGET},
		{"HEAD", MethodHEAD},
		{"POST", MethodPOST},
		{"PUT", MethodPUT},
		{"DELETE", MethodDELETE},
		{"OPTIONS", MethodOPTIONS},
		{"PATCH", MethodPATCH},
		{"CONNECT", MethodCONNECT},
		{"TRACE", MethodTRACE},
		{"get", MethodUnknown},
		{"GETX", MethodUnknown},
		{"G", MethodUnknown},
		{"", MethodUnknown},
		{"FOO", MethodUnknown},
	}
	for _, tc := range cases {
		if got := ParseMethodID([]byte(tc.raw)); got != tc.want {
			t.Errorf("ParseMethodID(%q) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}

func TestMethodStringRoundTrip(t *testing.T) {
	for _, id := range []uint8{MethodGET, MethodHEAD, MethodPOST, MethodDELETE} {
		s := MethodString(id)
		if got := ParseMethodID([]byte(s)); got != id {
			t.Errorf("round trip %q: got %d, want %d", s, got, id)
		}
	}
}

func TestIsServableMethod(t *testing.T) {
	if !IsServableMethod(MethodGET) || !IsServableMethod(MethodHEAD) {
		t.Error("GET and HEAD must be servable")
	}
	for _, id := range []uint8{MethodPOST, MethodPUT, MethodDELETE, MethodOPTIONS, MethodUnknown} {
		if IsServableMethod(id) {
			t.Errorf("method %d should not be servable", id)
		}
	}
}
