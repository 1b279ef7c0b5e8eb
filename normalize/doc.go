// Package normalize flattens a company record into the single query text that
// is embedded and compared against the template store.
//
// Sections are emitted in a fixed order separated by a blank line:
// description, overview, industries, website summary and recent news. Missing
// fields render as empty values so the labels are always present. The news
// section is chosen by an explicit Policy rather than by whichever field a
// particular enrichment stage happened to fill in.
package normalize
