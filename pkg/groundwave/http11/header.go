package http11

// Header stores HTTP headers as an ordered sequence of name/value pairs.
// Names are case-insensitive per RFC 7230; duplicates are preserved in
// arrival order. Lookups that need a single value take the last
// occurrence, which is the server's rule for singleton headers.
//
// Up to 32 headers with values ≤128 bytes live in inline fixed-size
// arrays (zero heap allocations, covers nearly all real requests).
// Anything beyond that spills to an ordered overflow slice. VisitAll
// iterates inline entries first, then overflow, so serialization keeps
// a stable order either way.
type Header struct {
	names  [MaxInlineHeaders][MaxHeaderName]byte
	values [MaxInlineHeaders][MaxInlineHeaderValue]byte

	nameLens  [MaxInlineHeaders]uint8
	valueLens [MaxInlineHeaders]uint8

	// Arrival index per inline entry. Overflow does not always arrive
	// after the inline tier (an oversized value spills mid-request while
	// later small duplicates stay inline), so last-wins lookups compare
	// these instead of assuming tier order.
	seqs [MaxInlineHeaders]uint16

	count   uint8
	nextSeq uint16

	// Overflow storage for >32 headers or oversized values (rare case).
	// A slice, not a map: order and duplicates must survive.
	overflow []headerPair
}

type headerPair struct {
	name  string
	value string
	seq   uint16
}

// Add appends a header, preserving duplicates and arrival order.
// Returns ErrHeaderTooLarge if the name exceeds 64 bytes, and
// ErrInvalidHeader if the name or value embeds CR or LF (response
// splitting protection, RFC 7230 §3.2).
//
// Allocation behavior: 0 allocs/op for ≤32 headers with small values
func (h *Header) Add(name, value []byte) error {
	if len(name) == 0 || len(name) > MaxHeaderName {
		return ErrHeaderTooLarge
	}
	for _, b := range name {
		if b == '\r' || b == '\n' {
			return ErrInvalidHeader
		}
	}
	for _, b := range value {
		if b == '\r' || b == '\n' {
			return ErrInvalidHeader
		}
	}

	seq := h.nextSeq
	h.nextSeq++

	if h.count < MaxInlineHeaders && len(value) <= MaxInlineHeaderValue {
		idx := h.count
		copy(h.names[idx][:], name)
		copy(h.values[idx][:], value)
		h.nameLens[idx] = uint8(len(name))
		h.valueLens[idx] = uint8(len(value))
		h.seqs[idx] = seq
		h.count++
		return nil
	}

	h.overflow = append(h.overflow, headerPair{string(name), string(value), seq})
	return nil
}

// Get retrieves a header value by name (case-insensitive). When the
// header occurs more than once, the last occurrence wins. Returns nil
// if absent.
//
// The returned slice references internal storage; it is valid until the
// next Reset or Add.
func (h *Header) Get(name []byte) []byte {
	// Find the last match in each tier, then compare arrival indices:
	// neither tier is guaranteed to hold the later occurrence.
	var inlineVal []byte
	inlineSeq := -1
	for i := int(h.count) - 1; i >= 0; i-- {
		if h.nameLens[i] == uint8(len(name)) &&
			bytesEqualFold(h.names[i][:h.nameLens[i]], name) {
			inlineVal = h.values[i][:h.valueLens[i]]
			inlineSeq = int(h.seqs[i])
			break
		}
	}
	for i := len(h.overflow) - 1; i >= 0; i-- {
		if equalFoldString(h.overflow[i].name, name) {
			if int(h.overflow[i].seq) > inlineSeq {
				return []byte(h.overflow[i].value)
			}
			break
		}
	}
	return inlineVal
}

// GetString is Get with a string result; empty string if absent.
func (h *Header) GetString(name []byte) string {
	v := h.Get(name)
	if v == nil {
		return ""
	}
	return string(v)
}

// Has reports whether a header exists (case-insensitive).
func (h *Header) Has(name []byte) bool {
	return h.Get(name) != nil
}

// Set replaces every occurrence of name with a single value, appending
// if absent. Used on the response side where singleton semantics apply.
func (h *Header) Set(name, value []byte) error {
	h.Del(name)
	return h.Add(name, value)
}

// Del removes every occurrence of a header (case-insensitive).
func (h *Header) Del(name []byte) {
	for i := uint8(0); i < h.count; {
		if h.nameLens[i] == uint8(len(name)) &&
			bytesEqualFold(h.names[i][:h.nameLens[i]], name) {
			last := h.count - 1
			if i < last {
				copy(h.names[i:], h.names[i+1:h.count])
				copy(h.values[i:], h.values[i+1:h.count])
				copy(h.nameLens[i:], h.nameLens[i+1:h.count])
				copy(h.valueLens[i:], h.valueLens[i+1:h.count])
				copy(h.seqs[i:], h.seqs[i+1:h.count])
			}
			h.count--
			continue
		}
		i++
	}

	kept := h.overflow[:0]
	for _, p := range h.overflow {
		if !equalFoldString(p.name, name) {
			kept = append(kept, p)
		}
	}
	h.overflow = kept
}

// Len returns the total number of stored headers, duplicates included.
func (h *Header) Len() int {
	return int(h.count) + len(h.overflow)
}

// Reset clears all headers for pooled reuse.
func (h *Header) Reset() {
	h.count = 0
	h.nextSeq = 0
	h.overflow = nil
}

// VisitAll calls visitor for each header in stored order. Iteration
// stops if visitor returns false.
func (h *Header) VisitAll(visitor func(name, value []byte) bool) {
	for i := uint8(0); i < h.count; i++ {
		if !visitor(h.names[i][:h.nameLens[i]], h.values[i][:h.valueLens[i]]) {
			return
		}
	}
	for _, p := range h.overflow {
		if !visitor([]byte(p.name), []byte(p.value)) {
			return
		}
	}
}

// bytesEqualFold compares two byte slices ASCII-case-insensitively.
func bytesEqualFold(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if toLower(a[i]) != toLower(b[i]) {
			return false
		}
	}
	return true
}

func equalFoldString(a string, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if toLower(a[i]) != toLower(b[i]) {
			return false
		}
	}
	return true
}

// toLower folds an ASCII uppercase letter; other bytes pass through.
// Sufficient for header names, which are ASCII.
func toLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 32
	}
	return b
}
