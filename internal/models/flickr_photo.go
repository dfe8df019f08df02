package models

// FlickrPhoto is a raw photo record from flickr.photos.search and
// flickr.photos.getRecent.
type FlickrPhoto struct {
	ID       string   `json:"id"`
	Owner    string   `json:"owner"`
	Secret   string   `json:"secret"`
	Server   string   `json:"server"`
	Farm     int      `json:"farm"`
	Title    string   `json:"title"`
	IsPublic FlexBool `json:"ispublic"`
	IsFriend FlexBool `json:"isfriend"`
	IsFamily FlexBool `json:"isfamily"`
}

// PhotosPage is one page of raw records.
type PhotosPage struct {
	Page    int           `json:"page"`
	Pages   int           `json:"pages"`
	PerPage int           `json:"perpage"`
	Total   int           `json:"total"`
	Photo   []FlickrPhoto `json:"photo"`
}

// PhotosResponse is the envelope shared by search and getRecent.
type PhotosResponse struct {
	Photos PhotosPage `json:"photos"`
}
