package content

import "strings"

// SegmentSeparator joins thread segments in storage.
const SegmentSeparator = "\n\n"

// SplitSegments cuts text on blank-line boundaries, trims each piece and drops
// empty ones. Order is preserved. Never returns nil.
func SplitSegments(text string) []string {
	parts := strings.Split(text, SegmentSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinSegments is the storage form of a segment list.
// SplitSegments(JoinSegments(SplitSegments(x))) equals SplitSegments(x).
func JoinSegments(segments []string) string {
	return strings.Join(segments, SegmentSeparator)
}

// Segments returns the display segments for a content type: threads are split,
// everything else is a single trimmed segment.
func Segments(ct ContentType, text string) []string {
	if ct == Twitter {
		return SplitSegments(text)
	}
	if t := strings.TrimSpace(text); t != "" {
		return []string{t}
	}
	return []string{}
}
