package charts

import (
	"fmt"
	"html/template"
)

// EChartsScriptURL is the echarts build the page and snapshots load
const EChartsScriptURL = "https://cdn.jsdelivr.net/npm/echarts@5.4.3/dist/echarts.min.js"

// ChartSnippet is an embeddable chart fragment.
// Div holds a single fixed-size root element, Script initialises the chart in
// it after disposing any instance already bound to that element, and HTML
// combines both for template substitution.
type ChartSnippet struct {
	ID     string
	Title  string
	Div    template.HTML
	Script template.HTML
	HTML   template.HTML
}

// Snippet builds the embeddable fragment for a handle
func Snippet(h Handle) ChartSnippet {
	div := fmt.Sprintf(`<div id="%s" class="chart-canvas" style="width:%dpx;height:%dpx;"></div>`,
		template.HTMLEscapeString(h.ID), h.Width, h.Height)
	script := fmt.Sprintf(`<script>(function(){var el=document.getElementById('%s');if(!el)return;var old=echarts.getInstanceByDom(el);if(old){old.dispose();}var c=echarts.init(el,null,{width:%d,height:%d});c.setOption(%s);})();</script>`,
		template.JSEscapeString(h.ID), h.Width, h.Height, string(h.Options))

	title := h.Style.Title
	if title == "" {
		title = h.ID
	}

	complete := fmt.Sprintf(`<div class="chart-container">
	<h3>%s</h3>
	%s
</div>
%s`, template.HTMLEscapeString(title), div, script)

	return ChartSnippet{
		ID:     h.ID,
		Title:  title,
		Div:    template.HTML(div),
		Script: template.HTML(script),
		HTML:   template.HTML(complete),
	}
}

// Snippets builds fragments for all live charts in layout order
func (r *Renderer) Snippets() []ChartSnippet {
	handles := r.Handles()
	out := make([]ChartSnippet, 0, len(handles))
	for _, h := range handles {
		out = append(out, Snippet(h))
	}
	return out
}
