package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/ks982579/sullivansoftware-dot-dev/internal/app"
)

// minDetailWrap keeps glamour output readable on very narrow terminals.
const minDetailWrap = 24

// detailRenderer styles one todo's markdown summary for the info pane and
// rebuilds the glamour renderer only when the wrap width changes.
type detailRenderer struct {
	width    int
	renderer *glamour.TermRenderer
}

// render converts a todo subtree into ANSI-styled terminal text. Rendering
// failures fall back to the raw markdown so the pane never goes blank.
func (r *detailRenderer) render(node *app.TreeNode, width int) string {
	doc := todoDocument(node)

	wrapWidth := width
	if wrapWidth < minDetailWrap {
		wrapWidth = minDetailWrap
	}
	if r.renderer == nil || r.width != wrapWidth {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrapWidth),
		)
		if err != nil {
			return doc
		}
		r.renderer = renderer
		r.width = wrapWidth
	}

	rendered, err := r.renderer.Render(doc)
	if err != nil {
		return doc
	}
	return strings.TrimRight(rendered, "\n")
}

// todoDocument builds the markdown source for one todo's detail pane.
func todoDocument(node *app.TreeNode) string {
	state := "open"
	if node.Completed {
		state = "done"
	}

	var doc strings.Builder
	fmt.Fprintf(&doc, "# %s\n\n", node.Title)
	fmt.Fprintf(&doc, "- **type**: %s\n", node.Kind)
	fmt.Fprintf(&doc, "- **state**: %s\n", state)
	fmt.Fprintf(&doc, "- **created**: %s\n", node.CreatedAt.Format("2006-01-02 15:04"))
	if len(node.Children) > 0 {
		fmt.Fprintf(&doc, "- **progress**: %d of %d leaf tasks done\n", node.Done, node.Total)
		doc.WriteString("\n## Children\n\n")
		for _, child := range node.Children {
			check := " "
			if child.Completed {
				check = "x"
			}
			fmt.Fprintf(&doc, "- [%s] %s\n", check, child.Title)
		}
	}
	return doc.String()
}
