// Package model defines the core data structures used throughout
// the gemini-extractor application.
//
// # Archive
//
// Archive represents an input file together with the paths derived from it:
//
//	archive, err := model.NewArchive("/downloads/photos.rar")
//	fmt.Println(archive.Format)        // rar
//	fmt.Println(archive.OutputFolder)  // /downloads/photos
//	fmt.Println(archive.Destination()) // /downloads/photos/
//
// Only .zip and .rar files are recognised. The extension check is
// case-insensitive.
//
// # Extraction Arguments
//
// ExtractArgs builds the argument list passed to the extraction tool:
//
//	model.ExtractArgs(archive, "")       // x <archive> <dest>
//	model.ExtractArgs(archive, "s3cret") // x -ps3cret <archive> <dest>
//
// # Progress Parsing
//
// ParsePercent pulls a completion percentage out of a line of tool output,
// for front ends that want to draw a progress bar.
package model
