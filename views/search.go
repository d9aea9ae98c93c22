package views

import (
	"context"

	"github.com/a-h/templ"

	"github.com/eringen/followdash/criteria"
)

// Criteria is the full search-criteria page.
func Criteria(p *criteria.Page, csrfToken string) templ.Component {
	return Layout("Searches", CriteriaBody(p, csrfToken))
}

// CriteriaBody renders the list or the form depending on the page mode.
func CriteriaBody(p *criteria.Page, csrfToken string) templ.Component {
	return component(func(ctx context.Context, h *writer) {
		h.raw(`<section id="criteria" class="criteria"`)
		h.attr("data-mode", p.Mode.String())
		h.raw(`>`)
		h.component(ctx, Banner("info", p.Flash))
		h.component(ctx, Banner("error", p.Message))
		switch p.Mode {
		case criteria.Listing:
			criteriaList(h, p)
		default:
			criterionForm(h, p, csrfToken)
		}
		h.raw(`</section>`)
	})
}

func criteriaList(h *writer, p *criteria.Page) {
	h.raw(`<form class="filter" method="get"`)
	h.url("action", criteria.ListPath)
	h.raw(`><input type="search" name="q" placeholder="Filter by name"`)
	h.attr("value", p.Query)
	h.raw(`><button type="submit">Filter</button></form>`)

	h.raw(`<ul id="criteria-list" class="criteria-list">`)
	for _, r := range p.Rows {
		h.raw(`<li class="criterion"`)
		h.attr("data-id", r.ID)
		h.raw(`><a class="select"`)
		h.url("href", r.URL)
		h.raw(`>`)
		h.text(r.Name)
		h.raw(`</a>`)
		if r.Executed() {
			h.raw(` <span class="executed">Last run `)
			h.text(r.ExecutedDate)
			h.raw(` `)
			h.text(r.ExecutedTime)
			h.raw(`</span> <a class="results"`)
			h.url("href", criteria.ResultsPath(r.ID))
			h.raw(`>Results</a>`)
		} else {
			h.raw(` <span class="executed never">Never run</span>`)
		}
		h.raw(`</li>`)
	}
	h.raw(`<li class="criterion new"><a class="new"`)
	h.url("href", p.NewURL)
	h.raw(`>New search</a></li></ul>`)
}

func criterionForm(h *writer, p *criteria.Page, csrfToken string) {
	title := "New search"
	if p.Mode == criteria.Editing {
		title = "Edit search"
	}
	h.raw(`<h1>`)
	h.text(title)
	h.raw(`</h1><form id="criterion-form" class="criterion-form" method="post"`)
	h.url("action", criteria.ListPath)
	h.raw(`>`)
	csrfInput(h, csrfToken)
	for _, f := range p.Form.Fields() {
		formField(h, f, p.Invalid[f.Name])
	}
	h.raw(`<div class="actions"><button type="submit">Save</button> <a class="cancel"`)
	h.url("href", criteria.CancelPath)
	h.raw(`>Cancel</a></div></form>`)

	if del := p.DeleteURL(); del != "" {
		h.raw(`<form id="delete-form" class="delete" method="post"`)
		h.url("action", del)
		h.raw(`>`)
		csrfInput(h, csrfToken)
		h.raw(`<input type="hidden"`)
		h.attr("name", criteria.MethodField)
		h.raw(` value="DELETE"><input type="hidden" name="id"`)
		h.attr("value", p.Form.ID)
		h.raw(`><button type="submit" class="danger"`)
		h.attr("data-id", p.Form.ID)
		h.raw(`>Delete</button></form>`)
	}
}

func csrfInput(h *writer, token string) {
	h.raw(`<input type="hidden" name="_csrf"`)
	h.attr("value", token)
	h.raw(`>`)
}

func formField(h *writer, f criteria.Field, invalid string) {
	id := "field-" + f.Name
	switch f.Kind {
	case criteria.Hidden:
		h.raw(`<input type="hidden"`)
		h.attr("name", f.Name)
		h.attr("value", f.Value)
		h.raw(`>`)
		return
	case criteria.Checkbox:
		h.raw(`<label class="check"><input type="checkbox"`)
		h.attr("id", id)
		h.attr("name", f.Name)
		h.flag("checked", f.Checked)
		h.raw(`> `)
		h.text(f.Label)
		h.raw(`</label>`)
		return
	}
	h.raw(`<label class="field"`)
	h.attr("for", id)
	h.raw(`>`)
	h.text(f.Label)
	h.raw(`</label><input`)
	h.attr("id", id)
	h.attr("name", f.Name)
	switch f.Kind {
	case criteria.Integer:
		h.raw(` type="number" min="0" step="1"`)
	case criteria.Decimal:
		h.raw(` type="number" min="0" step="any"`)
	default:
		h.raw(` type="text"`)
	}
	h.attr("value", f.Value)
	if invalid != "" {
		h.attr("aria-invalid", "true")
	}
	h.raw(`>`)
	if invalid != "" {
		h.raw(`<span class="field-error">`)
		h.text(invalid)
		h.raw(`</span>`)
	}
}
