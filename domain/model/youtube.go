package model

import "fmt"

const watchURLFormat = "https://www.youtube.com/watch?v=%s"

// VideoRecord is one video's metadata as persisted to the artifact file and
// the topic collection. The same field names are used for JSON and BSON.
type VideoRecord struct {
	VideoID     string `json:"video_id" bson:"video_id"`
	Title       string `json:"title" bson:"title"`
	Description string `json:"description" bson:"description"`
	UploadDate  string `json:"upload_date" bson:"upload_date"`
	Views       int64  `json:"views" bson:"views"`
	Likes       int64  `json:"likes" bson:"likes"`
	Comments    int64  `json:"comments" bson:"comments"`
	URL         string `json:"url" bson:"url"`
}

// WatchURL builds the canonical watch URL for a video ID.
func WatchURL(videoID string) string {
	return fmt.Sprintf(watchURLFormat, videoID)
}

// SearchPage is one page of video search results.
type SearchPage struct {
	VideoIDs      []string
	NextPageToken string
}
