// Package manganelo implements providers.Source for manganelo.com.
//
// The site has no cursor or change feed: each listing page only tells
// whether another page follows. Paged listings are therefore driven one
// page per call with a providers.Cursor handed back to the caller, and the
// update scan walks the newest-first "all genres" listing until it reaches
// rows older than the watermark.
package manganelo
