package models

import (
	"time"
)

// Video is an uploaded MP4 plus its extracted thumbnail
type Video struct {
	ID              uint      `gorm:"primaryKey;autoIncrement"`
	Name            string    `gorm:"size:256;not null"`
	Description     string    `gorm:"type:text;not null;default:''"`
	UploadPath      string    `gorm:"size:512;not null"`
	ThumbnailPath   string    `gorm:"size:512;not null"`
	UploadDate      time.Time `gorm:"not null;autoCreateTime;index"`
	ViewCount       int64     `gorm:"not null;default:0;index"`
	DurationSeconds float64   `gorm:"not null;default:0"`
	MediaInfo       JSON
	UserID          uint       `gorm:"not null;index"`
	User            User       `gorm:"foreignKey:UserID"`
	Comments        []Comment  `gorm:"constraint:OnDelete:CASCADE"`
	VideoTags       []VideoTag `gorm:"constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name for Video
func (Video) TableName() string {
	return "videos"
}

// VideoTag links a video to a tag. The pair is the primary key.
type VideoTag struct {
	VideoID uint `gorm:"primaryKey;autoIncrement:false"`
	TagID   uint `gorm:"primaryKey;autoIncrement:false;index"`
	Tag     Tag  `gorm:"foreignKey:TagID"`
}

// TableName overrides the table name for VideoTag
func (VideoTag) TableName() string {
	return "video_tags"
}

// Tag is a free-form label with a unique name
type Tag struct {
	ID        uint       `gorm:"primaryKey;autoIncrement"`
	Name      string     `gorm:"size:128;not null;uniqueIndex"`
	VideoTags []VideoTag `gorm:"constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name for Tag
func (Tag) TableName() string {
	return "tags"
}
