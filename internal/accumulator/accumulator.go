// Package accumulator merges recognized text into the document a user builds across images.
//
// Every image contributes one section introduced by a rule line and a marker line:
//
//	<blank line>
//	────────────────────────────
//	— photo.png —
//	recognized text...
//
// Recognizing the same image again appends under its existing marker.
package accumulator

import "strings"

// Rule is the line drawn above every marker.
const Rule = "────────────────────────────"

// Marker returns the line that names an image's section
func Marker(name string) string {
	return "— " + name + " —"
}

// Label returns the separator and marker that open a new section
func Label(name string) string {
	return "\n\n" + Rule + "\n" + Marker(name) + "\n"
}

// Merge appends recognized to current under the section for name.
// An empty document starts with the label, a document without the marker gets a new section, and a
// document that already contains the marker gets the text appended on a new line.
func Merge(current, name, recognized string) string {
	switch {
	case current == "":
		return Label(name) + recognized
	case !strings.Contains(current, Marker(name)):
		return current + Label(name) + recognized
	default:
		return current + "\n" + recognized
	}
}

// Section is one image's contribution. Text that precedes the first marker is returned with an empty Name.
type Section struct {
	Name string `json:"name"`
	Body string `json:"body"`
}

// Sections splits a document at its section labels.
func Sections(doc string) []Section {
	const open = "\n\n" + Rule + "\n— "
	const closing = " —\n"

	var sections []Section
	name := ""
	bodyStart := 0
	search := 0
	for {
		i := strings.Index(doc[search:], open)
		if i < 0 {
			break
		}
		i += search
		tail := doc[i+len(open):]
		j := strings.Index(tail, closing)
		if j < 0 || strings.Contains(tail[:j], "\n") {
			// not a marker line, keep it as body text
			search = i + len(open)
			continue
		}
		if len(sections) > 0 || name != "" || i > bodyStart {
			sections = append(sections, Section{Name: name, Body: doc[bodyStart:i]})
		}
		name = tail[:j]
		bodyStart = i + len(open) + j + len(closing)
		search = bodyStart
	}
	if name != "" || bodyStart < len(doc) {
		sections = append(sections, Section{Name: name, Body: doc[bodyStart:]})
	}
	return sections
}

// Names returns the image names that have a section, in document order
func Names(doc string) []string {
	var names []string
	for _, s := range Sections(doc) {
		if s.Name != "" {
			names = append(names, s.Name)
		}
	}
	return names
}
