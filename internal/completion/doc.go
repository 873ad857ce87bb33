// Package completion implements tab completion over the filesystem and the
// executable search path.
//
// A completion request carves the segment left of the cursor out of the
// line, gathers candidates for it and then does one of three things:
//   - extends the segment to the candidates' longest common prefix
//   - finishes a unique candidate with "/" (directory) or " " (file)
//   - leaves the segment alone and returns the candidates for listing
//
// Matching and ordering are case-insensitive. Nothing is cached; every
// request reads the directories again.
package completion
