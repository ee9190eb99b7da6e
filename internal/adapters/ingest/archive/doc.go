// Package archive recovers a parsed document from an export archive of unknown encoding and wrapping
//
// Design choices:
// - Read the whole file; archives are expected to fit in memory (no streaming parse)
// - Cascade: optional statistical guess, then a fixed list of UTF-8 family and East-Asian legacy encodings
// - Decoding is strict per candidate so a wrong guess fails fast instead of producing mojibake
// - Script exports (window.YTD.tweets.part0 = [...]) have the assignment cut away before parsing
// - Last resort scans the raw bytes for the outermost [ ... ] under each fallback encoding, leniently
package archive
