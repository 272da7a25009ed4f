package fs

// Changed reports whether a file was modified between two stats.
// Archiving uses it to refuse an artifact whose source moved underneath it.
func Changed(orig, now FileInfo) bool {
	if now.Inode != 0 && orig.Inode != 0 && now.Inode != orig.Inode {
		return true
	}
	if !now.MTime.Equal(orig.MTime) {
		return true
	}
	return now.Size != orig.Size
}
