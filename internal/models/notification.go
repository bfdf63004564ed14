package models

import (
	"encoding/xml"
	"time"
)

// Notification is one posted system notification as delivered by the event source
type Notification struct {
	SourceApp string   `json:"source_app"`
	Title     string   `json:"title"`
	Text      string   `json:"text"`
	BigText   string   `json:"big_text,omitempty"`
	SubText   string   `json:"sub_text,omitempty"`
	TextLines []string `json:"text_lines,omitempty"`
	Ongoing   bool     `json:"ongoing"`

	// ReplayAt is set only for historical messages (backup import). Live
	// notifications leave it zero and are stamped with the wall clock.
	ReplayAt time.Time `json:"-"`
}

// SMS represents a single SMS message from the XML backup
type SMS struct {
	Address string `xml:"address,attr"`
	Body    string `xml:"body,attr"`
	Date    string `xml:"date,attr"`
}

// SMSBackup represents the root of the XML document
type SMSBackup struct {
	XMLName xml.Name `xml:"smses"`
	SMS     []SMS    `xml:"sms"`
}
