package cloud

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"strconv"
)

// WriteSVG writes s as a self-contained HTML fragment: the placeholder
// paragraph for an empty scene, otherwise an <svg> whose words are centred
// on the canvas. Each <text> carries its comment id, like count and layout
// coordinates as data attributes for hover and click handling.
func WriteSVG(w io.Writer, s Scene) error {
	var buf bytes.Buffer

	if s.Empty {
		fmt.Fprintf(&buf, "<p class=\"placeholder\">%s</p>\n", html.EscapeString(Placeholder))
		_, err := w.Write(buf.Bytes())
		return err
	}

	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		s.Width, s.Height, s.Width, s.Height)
	fmt.Fprintf(&buf, `<g transform="translate(%s,%s)">`+"\n",
		num(float64(s.Width)/2), num(float64(s.Height)/2))

	for i, word := range s.Words {
		fmt.Fprintf(&buf,
			`<text class="word" data-index="%d" data-id="%d" data-likes="%d" data-x="%s" data-y="%s" `+
				`text-anchor="middle" transform="translate(%s,%s)rotate(%d)" style="font-size: %spx; font-family: %s;">`,
			i, word.ID, word.Likes, num(word.X), num(word.Y),
			num(word.X), num(word.Y), word.Rotate, num(word.FontSize), html.EscapeString(word.Font))
		if err := xml.EscapeText(&buf, []byte(word.Text)); err != nil {
			return fmt.Errorf("escaping word text: %w", err)
		}
		buf.WriteString("</text>\n")
	}

	buf.WriteString("</g>\n</svg>\n")
	_, err := w.Write(buf.Bytes())
	return err
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
