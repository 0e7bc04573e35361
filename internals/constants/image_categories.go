package constants

import "strings"

// Image categories. Home categories are global, event_memories belong to one event.
const (
	ImageCategoryHomeAnnouncement = "home_announcement"
	ImageCategoryHomeMemories     = "home_memories"
	ImageCategoryEventMemories    = "event_memories"
)

// Blob folders
const (
	FolderEventAssets   = "arc_events"
	FolderEventReceipts = "event_receipts"
	FolderHomeImages    = "arc_home"
)

func IsGlobalImageCategory(category string) bool {
	switch strings.TrimSpace(category) {
	case ImageCategoryHomeAnnouncement, ImageCategoryHomeMemories:
		return true
	default:
		return false
	}
}
