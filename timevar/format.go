package timevar

import (
	"fmt"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
)

var offsetCodes = []string{":::z", "::z", ":z", "z"}

// Format renders t with the strftime format f. Besides the codes of
// strftime, f may use %:z (+hh:mm), %::z (+hh:mm:ss) and %:::z (+hh,
// +hh:mm or +hh:mm:ss, the shortest exact form). A zero UTC offset is
// rendered as Z by all four offset codes.
func Format(t time.Time, f string) string {
	return strftime.Format(expandOffsets(t, f), t)
}

func expandOffsets(t time.Time, f string) string {
	_, off := t.Zone()
	buf := strings.Builder{}
	for i := 0; i < len(f); i++ {
		if f[i] != '%' || i+1 == len(f) {
			buf.WriteByte(f[i])
			continue
		}
		if f[i+1] == '%' {
			buf.WriteString("%%")
			i++
			continue
		}
		matched := false
		for _, code := range offsetCodes {
			if strings.HasPrefix(f[i+1:], code) {
				buf.WriteString(renderOffset(off, code))
				i += len(code)
				matched = true
				break
			}
		}
		if !matched {
			buf.WriteByte('%')
		}
	}
	return buf.String()
}

func renderOffset(off int, code string) string {
	if off == 0 {
		return "Z"
	}
	sign := '+'
	if off < 0 {
		sign = '-'
		off = -off
	}
	h, m, s := off/3600, off/60%60, off%60
	switch code {
	case "z":
		return fmt.Sprintf("%c%02d%02d", sign, h, m)
	case ":z":
		return fmt.Sprintf("%c%02d:%02d", sign, h, m)
	case "::z":
		return fmt.Sprintf("%c%02d:%02d:%02d", sign, h, m, s)
	}
	switch {
	case s != 0:
		return fmt.Sprintf("%c%02d:%02d:%02d", sign, h, m, s)
	case m != 0:
		return fmt.Sprintf("%c%02d:%02d", sign, h, m)
	}
	return fmt.Sprintf("%c%02d", sign, h)
}
