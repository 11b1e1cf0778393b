// Package io reads and writes badge rosters and renderer settings.
//
// # Formats
//
// Three roster formats are supported. All of them carry the same fields per
// badge (see [Record]); they differ only in how the batch around the records
// is described.
//
// CSV has one badge per line and no header:
//
//	number,primary,secondary,background,bg-color,text-bg-color,text-color[,fit[,extra...]]
//	1,Team A,Oklahoma State University,logo.png,ffffff,000000,ffffff,fit_width
//
// A line with fewer than seven columns is an error that names the line.
// Columns after the fit are extra data lines, typically "key::value".
//
// TOML batch files add a badge size and the renderer configuration:
//
//	[size]
//	width = 2.5
//	height = 3.125
//	resolution = 300
//
//	[renderer]
//	name = "classic"
//	[renderer.properties]
//	primary-height = 0.2
//
//	[[badge]]
//	number = 1
//	primary = "Team A"
//
// JSON holds {"size": {...}, "badges": [...]} and is what the preview server
// accepts.
//
// # Paths and images
//
// Background paths are resolved against the directory of the file that names
// them. Images are decoded through a [raster.ImageCache]; an image that cannot
// be loaded is a resource error: it is logged and the badge is kept without a
// background.
//
// # Settings
//
// [ReadSettings] and [WriteSettings] store the size and renderer sections
// alone, so a tuned renderer configuration can be reused across rosters.
//
// [raster.ImageCache]: github.com/osumercury/badgemaker/pkg/raster.ImageCache
package io
