package domain

// Stats is a point-in-time summary of the lecture store
type Stats struct {
	TotalLectures  int64 `json:"totalLectures"`
	ActiveStudents int64 `json:"activeStudents"`
	TotalDownloads int64 `json:"totalDownloads"`
	StorageUsed    int64 `json:"storageUsed"`
}
