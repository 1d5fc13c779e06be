// Package trace parses allocation scripts and replays them against an
// allocator, checking that every block keeps its contents and that no two
// live blocks overlap.
//
// # Script Format
//
// One operation per line. Blank lines and lines starting with # are ignored.
//
//	a <id> <size>   allocate size bytes and bind the block to id
//	r <id> <size>   resize the block bound to id
//	f <id>          free the block bound to id
//
// Ids are small non-negative integers chosen by the script author. Scripts
// may be UTF-8, UTF-8 with a byte order mark, or UTF-16 with a byte order
// mark.
//
// # Replay
//
// Replay runs a script op by op. Each successful allocation is filled with a
// byte pattern derived from its id; the pattern is checked when the block is
// resized and again before it is freed. A failed allocation is counted, not
// treated as an error, since running out of arena is a legitimate outcome.
// Corrupted payloads, overlapping blocks, and (with Options.Validate) a heap
// that fails its consistency check stop the replay with an error.
package trace
