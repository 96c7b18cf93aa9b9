package domain

import "time"

// BlockTypeParagraph is the only block type produced by ingestion today;
// the column exists so the editor can introduce headings and tables later.
const BlockTypeParagraph = "paragraph"

// ReportBlock is one ordered unit of extracted text with its tags.
type ReportBlock struct {
	ID      string
	Content string
	Type    string
	Tags    []string
}

// ReportDocument is a stored report: a title plus ordered blocks, with
// metadata about the uploaded source file when one exists.
type ReportDocument struct {
	ID        string
	UserID    string
	Title     string
	Blocks    []ReportBlock
	FilePath  string
	FileSize  int64
	FileType  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
