package models

// PhotoInfoResponse is the envelope of flickr.photos.getInfo.
type PhotoInfoResponse struct {
	Photo PhotoInfo `json:"photo"`
}

// PhotoInfo is the detail record for a single photo. Everything beyond the
// identifiers is optional.
type PhotoInfo struct {
	ID                string            `json:"id"`
	Secret            string            `json:"secret"`
	Server            string            `json:"server"`
	Farm              int               `json:"farm"`
	DateUploaded      *string           `json:"dateuploaded,omitempty"`
	IsFavorite        *FlexBool         `json:"isfavorite,omitempty"`
	License           *string           `json:"license,omitempty"`
	SafetyLevel       *string           `json:"safety_level,omitempty"`
	Rotation          *int              `json:"rotation,omitempty"`
	Owner             *PhotoOwner       `json:"owner,omitempty"`
	Title             *TextContent      `json:"title,omitempty"`
	Description       *TextContent      `json:"description,omitempty"`
	Visibility        *PhotoVisibility  `json:"visibility,omitempty"`
	Dates             *PhotoDates       `json:"dates,omitempty"`
	Views             *string           `json:"views,omitempty"`
	Editability       *PhotoEditability `json:"editability,omitempty"`
	PublicEditability *PhotoEditability `json:"publiceditability,omitempty"`
	Usage             *PhotoUsage       `json:"usage,omitempty"`
	Comments          *TextContent      `json:"comments,omitempty"`
	Notes             *PhotoNotes       `json:"notes,omitempty"`
	People            *PhotoPeople      `json:"people,omitempty"`
	Tags              *PhotoTags        `json:"tags,omitempty"`
	URLs              *PhotoURLs        `json:"urls,omitempty"`
	Media             *string           `json:"media,omitempty"`
}

// Photo returns the domain photo described by this record.
func (i PhotoInfo) Photo() Photo {
	p := Photo{ID: i.ID, Server: i.Server, Secret: i.Secret}
	if i.Title != nil && i.Title.Content != nil && *i.Title.Content != "" {
		title := *i.Title.Content
		p.Title = &title
	}
	return p
}

type PhotoOwner struct {
	NSID       string  `json:"nsid"`
	Username   *string `json:"username,omitempty"`
	RealName   *string `json:"realname,omitempty"`
	Location   *string `json:"location,omitempty"`
	IconServer *string `json:"iconserver,omitempty"`
	IconFarm   *int    `json:"iconfarm,omitempty"`
	PathAlias  *string `json:"path_alias,omitempty"`
}

// TextContent is Flickr's {"_content": "..."} wrapper.
type TextContent struct {
	Content *string `json:"_content,omitempty"`
}

type PhotoVisibility struct {
	IsPublic FlexBool `json:"ispublic"`
	IsFriend FlexBool `json:"isfriend"`
	IsFamily FlexBool `json:"isfamily"`
}

type PhotoDates struct {
	Posted           string `json:"posted"`
	Taken            string `json:"taken"`
	TakenGranularity int    `json:"takengranularity"`
	TakenUnknown     string `json:"takenunknown"`
	LastUpdate       string `json:"lastupdate"`
}

type PhotoEditability struct {
	CanComment FlexBool `json:"cancomment"`
	CanAddMeta FlexBool `json:"canaddmeta"`
}

type PhotoUsage struct {
	CanDownload FlexBool `json:"candownload"`
	CanBlog     FlexBool `json:"canblog"`
	CanPrint    FlexBool `json:"canprint"`
	CanShare    FlexBool `json:"canshare"`
}

type PhotoNotes struct {
	Note []PhotoNote `json:"note,omitempty"`
}

type PhotoNote struct {
	ID         string `json:"id"`
	Author     string `json:"author"`
	AuthorName string `json:"authorname"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	W          int    `json:"w"`
	H          int    `json:"h"`
	Content    string `json:"_content"`
}

type PhotoPeople struct {
	HasPeople FlexBool `json:"haspeople"`
}

type PhotoTags struct {
	Tag []PhotoTag `json:"tag,omitempty"`
}

type PhotoTag struct {
	ID         string   `json:"id"`
	Author     string   `json:"author"`
	AuthorName string   `json:"authorname"`
	Raw        string   `json:"raw"`
	Content    string   `json:"_content"`
	MachineTag FlexBool `json:"machine_tag"`
}

type PhotoURLs struct {
	URL []PhotoURL `json:"url,omitempty"`
}

type PhotoURL struct {
	Type    string `json:"type"`
	Content string `json:"_content"`
}
