package update

import (
	"github.com/sandeepkv93/daybook/internal/views"
)

const helpMarkdown = `# daybook

Browse one day at a time. Unfinished daily items roll over at midnight.

## Commands

- ` + "`add <text> [YYYY-MM-DD]`" + ` add an item
- ` + "`done <n>`" + ` toggle item n
- ` + "`edit <n> <text>`" + ` rename item n
- ` + "`del <n>`" + ` delete item n
- ` + "`goto today|+N|-N|YYYY-MM-DD`" + ` change day
- ` + "`repeat <n> none|daily|weekly|monthly|yearly`" + ` set a repeat rule
- ` + "`pin <n>`" + ` pin or unpin item n
- ` + "`sync`" + ` push pending changes and fetch
- ` + "`dedupe`" + ` drop duplicate items
`

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func (m Model) renderHelpView() string {
	hm := m.helpModel
	hm.ShowAll = true
	return views.RenderHelpPanel(views.HelpPanelData{
		Markdown: helpMarkdown,
		HelpView: hm.View(m.Keys),
	})
}
