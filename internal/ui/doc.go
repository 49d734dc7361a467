// Package ui provides the Bubble Tea terminal interface for comicvault.
//
// The root Model owns two views. The upload view takes a path to a cover
// photo, uploads it and follows the analysis job; it is the surface of the
// job tracker. The collection view shows a debounced search box above a grid
// of cards, and opens a detail modal for the selected or clicked card; it is
// the surface of the search and detail controllers.
//
// All controller work happens on the Bubble Tea loop. Network calls run as
// commands and report back as messages, so views are only touched from
// Update.
//
// # Key Bindings
//
//   - tab: switch between Upload and Collection
//   - / or i: edit the file path or the search term; esc leaves the input
//   - enter: select the file, upload it, or open the selected card
//   - h/j/k/l or arrows: move through the grid
//   - d: delete the selected or open comic (asks first)
//   - ctrl+r: re-run the search
//   - T: cycle theme
//   - ?: toggle help
//   - ctrl+c: quit
//
// Theme and the last search term are saved to the prefs file.
package ui
