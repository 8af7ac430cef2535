package model

// Path represents a file system path.
type Path string
