package models

import "time"

// InboxMessage 站内收件箱消息
type InboxMessage struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Sender    string    `gorm:"type:varchar(255);not null;index" json:"sender"`
	Subject   string    `gorm:"type:varchar(255);not null" json:"subject"`
	BodyText  string    `gorm:"type:text" json:"body_text"`
	BodyHTML  string    `gorm:"type:text" json:"body_html"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (InboxMessage) TableName() string {
	return "inbox_messages"
}
