// Package archive inspects zip and rar archives without extracting them.
//
// Only two facts are read: whether the archive needs a password, and the
// archive-level comment its creator left behind.
//
// # Password Detection
//
//	inspector := archive.NewInspector()
//	protected, err := inspector.RequiresPassword(ctx, a)
//
// A zip archive needs a password when any entry has general purpose flag
// bit 0 set. A rar archive needs one when its headers are encrypted or any
// file is.
//
// Any failure to open or parse the archive is wrapped in ErrInspect.
//
// # Comments
//
//	comment, err := inspector.Comment(ctx, a)
//
// Zip comments come from the end of central directory record. Rar comments
// come from the CMT service header (RAR 5), the CMT sub-block (RAR 2.9 and
// later) or the comment embedded in the main header (older archives).
// Comments are returned as UTF-8 with invalid sequences replaced.
// Compressed rar comments are not decoded; ErrCompressedComment is returned.
package archive
