// Package render assembles the bundled pages into the single output
// document.
//
// The root page comes first, followed by every linked page in discovery
// order. Each page is a <section> whose id is the hex form of its PageID,
// which is exactly the anchor the crawler rewrote links to.
package render
