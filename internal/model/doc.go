// Package model defines the core data structures shared across onepage.
//
// This package contains the following main types:
//   - PageID: content-addressed identity of a linked page
//   - Page: the extracted title and rewritten body of one page
//   - Registry: deduplicating store of processed pages keyed by PageID
//   - RenderItem: a Page paired with the anchor it is rendered under
//   - Summary: a serializable account of one bundle build
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The crawler, renderer, report writers and history database all
// use these types, so centralizing them prevents import cycles.
package model
