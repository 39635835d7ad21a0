package models

import "time"

// CVFile records an archived resume upload; the extracted text itself lives in the session.
type CVFile struct {
	ID        string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID    string `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	SessionID string `gorm:"column:session_id;type:uuid;index" json:"session_id"`
	FileName  string `gorm:"column:file_name;type:text" json:"file_name"`
	FilePath  string `gorm:"column:file_path;type:text" json:"file_path"` // object key

	FileSize  int    `gorm:"column:file_size;type:integer" json:"file_size"`
	MimeType  string `gorm:"column:mime_type;type:text" json:"mime_type"`
	TextChars int    `gorm:"column:text_chars;type:integer" json:"text_chars"`

	UploadAt time.Time `gorm:"column:upload_at;type:timestamptz" json:"upload_at"`
}

func (CVFile) TableName() string { return "cv_files" }
