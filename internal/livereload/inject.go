// Package livereload pushes reload notifications to browsers over
// Server-Sent Events and injects the client script that listens for them.
package livereload

import "fmt"

const scriptTemplate = `<script>
(() => {
  const source = new EventSource(%q);
  source.onmessage = (event) => {
    if (event.data === "update") {
      source.close();
      location.reload();
    }
  };
})();
</script>
`

var bodyClose = []byte("</body>")

// Injector embeds the reload script into HTML documents.
type Injector struct {
	script []byte
}

// NewInjector builds an injector whose script subscribes to eventPath.
func NewInjector(eventPath string) *Injector {
	return &Injector{script: []byte(fmt.Sprintf(scriptTemplate, eventPath))}
}

// Script returns the injected markup.
func (i *Injector) Script() []byte {
	return i.script
}

// Inject places the script right before the last </body>, or at the end of
// the document when there is none. The input slice is not modified.
func (i *Injector) Inject(html []byte) []byte {
	out := make([]byte, 0, len(html)+len(i.script))

	idx := lastIndexASCIIFold(html, bodyClose)
	if idx == -1 {
		out = append(out, html...)
		return append(out, i.script...)
	}

	out = append(out, html[:idx]...)
	out = append(out, i.script...)
	return append(out, html[idx:]...)
}

// lastIndexASCIIFold is bytes.LastIndex with ASCII case folding. It never
// decodes the input, so offsets stay valid for non-UTF-8 documents.
func lastIndexASCIIFold(s, sep []byte) int {
	for i := len(s) - len(sep); i >= 0; i-- {
		match := true
		for j := range sep {
			c := s[i+j]
			if 'A' <= c && c <= 'Z' {
				c += 'a' - 'A'
			}
			if c != sep[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
