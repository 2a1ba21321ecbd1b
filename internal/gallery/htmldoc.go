package gallery

import (
	"fmt"
	"io"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"catgallery-server-go/internal/platform/errors"
)

// HTMLDocument is a parsed page whose elements are addressed by id. All
// methods are safe for concurrent use; each mutation is applied atomically.
type HTMLDocument struct {
	mu   sync.Mutex
	root *html.Node
}

// ParseHTML reads a full HTML page.
func ParseHTML(r io.Reader) (*HTMLDocument, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, errors.Wrap(errors.KindGallery, "htmldoc.parse", "failed to parse page", err)
	}
	return &HTMLDocument{root: root}, nil
}

// SetImageSource sets the src attribute of the element with the given id.
func (d *HTMLDocument) SetImageSource(id, src string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := findByID(d.root, id)
	if n == nil {
		return notFound(id)
	}
	setAttr(n, "src", src)
	return nil
}

// ReplaceImages drops every child of the container and appends one <img> per
// source, in order.
func (d *HTMLDocument) ReplaceImages(containerID string, sources []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	container := findByID(d.root, containerID)
	if container == nil {
		return notFound(containerID)
	}

	for c := container.FirstChild; c != nil; {
		next := c.NextSibling
		container.RemoveChild(c)
		c = next
	}
	for _, src := range sources {
		container.AppendChild(&html.Node{
			Type:     html.ElementNode,
			Data:     "img",
			DataAtom: atom.Img,
			Attr:     []html.Attribute{{Key: "src", Val: src}},
		})
	}
	return nil
}

// Attribute returns the named attribute of the element with the given id.
func (d *HTMLDocument) Attribute(id, name string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := findByID(d.root, id)
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// ImageSources lists the src of every <img> child of the element, in order.
func (d *HTMLDocument) ImageSources(id string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := findByID(d.root, id)
	if n == nil {
		return nil
	}
	var sources []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Img {
			continue
		}
		for _, a := range c.Attr {
			if a.Key == "src" {
				sources = append(sources, a.Val)
				break
			}
		}
	}
	return sources
}

// Render writes the current page.
func (d *HTMLDocument) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func notFound(id string) error {
	return errors.New(errors.KindGallery, "htmldoc.lookup", fmt.Sprintf("element #%s not found", id))
}
