package model

import "time"

type Paper struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"size:500;not null" json:"title"`
	Authors       string    `gorm:"type:text;not null" json:"authors"` // JSON array of author user IDs
	Abstract      string    `gorm:"type:text" json:"abstract"`
	Keywords      string    `gorm:"size:500" json:"keywords"`
	Journal       string    `gorm:"size:255" json:"journal"`
	UploaderID    uint      `gorm:"not null;index" json:"uploader_id"`
	FilePath      string    `gorm:"size:500" json:"-"`
	FileName      string    `gorm:"size:255" json:"file_name"`
	FileSize      int64     `json:"file_size"`
	IsOfficial    bool      `gorm:"not null;default:false" json:"is_official"`
	DownloadCount int       `gorm:"not null;default:0" json:"download_count"`
	UploadDate    time.Time `gorm:"autoCreateTime" json:"upload_date"`
}
