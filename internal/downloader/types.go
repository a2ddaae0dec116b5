package downloader

// YTDLPInfo mirrors fields from yt-dlp --dump-json output that we care about.
type YTDLPInfo struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Uploader     string        `json:"uploader"`
	Channel      string        `json:"channel"`
	Duration     float64       `json:"duration"`
	Description  string        `json:"description"`
	WebpageURL   string        `json:"webpage_url"`
	ExtractorKey string        `json:"extractor_key"`
	Formats      []YTDLPFormat `json:"formats"`
}

// YTDLPFormat is one entry of the formats array.
type YTDLPFormat struct {
	FormatID       string  `json:"format_id"`
	Ext            string  `json:"ext"`
	VCodec         string  `json:"vcodec"`
	ACodec         string  `json:"acodec"`
	FPS            float64 `json:"fps"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	ABR            float64 `json:"abr"` // kbps
	TBR            float64 `json:"tbr"` // kbps
	Filesize       int64   `json:"filesize"`
	FilesizeApprox int64   `json:"filesize_approx"`
	URL            string  `json:"url"`
	Protocol       string  `json:"protocol"`
}

func (f YTDLPFormat) hasVideo() bool { return f.VCodec != "" && f.VCodec != "none" }
func (f YTDLPFormat) hasAudio() bool { return f.ACodec != "" && f.ACodec != "none" }
