package protocol

// Profile carries cached author metadata for a feed item.
type Profile struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Picture     string `json:"picture"`
	About       string `json:"about"`
	NIP05       string `json:"nip05,omitempty"`
	Banner      string `json:"banner,omitempty"`
	Website     string `json:"website,omitempty"`
}

// FeedItem is one entry of the carousel content feed.
type FeedItem struct {
	ID        string     `json:"id"`
	Pubkey    string     `json:"pubkey"`
	CreatedAt int64      `json:"created_at"`
	Content   string     `json:"content"`
	Images    []string   `json:"images"`
	Tags      [][]string `json:"tags,omitempty"`
	Profile   Profile    `json:"profile"`
}

// FeedResponse is the content-feed endpoint payload.
type FeedResponse struct {
	Events      []FeedItem `json:"events"`
	Count       int        `json:"count"`
	Loading     bool       `json:"loading"`
	LastRefresh float64    `json:"last_refresh"`
}

// FaceMatch is one per-face recognition result attached to a capture.
// Status is "recognized" for a returning visitor, "new" otherwise.
type FaceMatch struct {
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	VisitCount int    `json:"visit_count"`
}

// QRPayload is the standing shop QR the kiosk shows while idle.
type QRPayload struct {
	QRCode string `json:"qr_code"` // base64 PNG
	URL    string `json:"url"`
}

// CaptureResult is the capture endpoint response: the external service
// has taken the photo, pushed it through the storage/publish pipeline and
// rendered the QR payload. The kiosk only displays the outcome.
type CaptureResult struct {
	Success   bool        `json:"success"`
	Error     string      `json:"error,omitempty"`
	PhotoPath string      `json:"photo_path,omitempty"`
	IPFSCid   string      `json:"ipfs_cid,omitempty"`
	IPFSURL   string      `json:"ipfs_url,omitempty"`
	Posted    bool        `json:"posted"`
	QRCode    string      `json:"qr_code,omitempty"` // base64 PNG
	QRURL     string      `json:"qr_url,omitempty"`
	Faces     []FaceMatch `json:"faces,omitempty"`
}
