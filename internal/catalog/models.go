package catalog

// OptionCount is the fixed number of options every quiz question carries.
const OptionCount = 4

type VideoItem struct {
	ID            string `yaml:"id" json:"id"`
	Title         string `yaml:"title" json:"title"`
	DurationLabel string `yaml:"duration" json:"duration"`
	ThumbnailRef  string `yaml:"thumbnail" json:"thumbnail,omitempty"`
	MediaRef      string `yaml:"media" json:"media"`
	Description   string `yaml:"description" json:"description,omitempty"`
}

// DocumentItem carries either a SizeLabel ("1.2 MB") or a PageCount, never both.
type DocumentItem struct {
	ID          string `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description,omitempty"`
	SizeLabel   string `yaml:"size" json:"size,omitempty"`
	PageCount   int    `yaml:"pages" json:"pages,omitempty"`
	DownloadRef string `yaml:"download" json:"download"`
}

type QuizQuestion struct {
	ID                 string   `yaml:"id" json:"id"`
	Prompt             string   `yaml:"prompt" json:"prompt"`
	Options            []string `yaml:"options" json:"options"`
	CorrectOptionIndex int      `yaml:"correct" json:"correct_option_index"`
	Explanation        string   `yaml:"explanation" json:"explanation,omitempty"`
}

type Module struct {
	ID          string         `yaml:"id" json:"id"`
	Title       string         `yaml:"title" json:"title"`
	Description string         `yaml:"description" json:"description"`
	Objectives  []string       `yaml:"objectives" json:"objectives,omitempty"`
	Videos      []VideoItem    `yaml:"videos" json:"videos"`
	Documents   []DocumentItem `yaml:"documents" json:"documents"`
	Questions   []QuizQuestion `yaml:"questions" json:"questions"`
}

// Video looks up a video by id within the module.
func (m *Module) Video(id string) (VideoItem, bool) {
	for _, v := range m.Videos {
		if v.ID == id {
			return v, true
		}
	}
	return VideoItem{}, false
}

func (m *Module) Document(id string) (DocumentItem, bool) {
	for _, d := range m.Documents {
		if d.ID == id {
			return d, true
		}
	}
	return DocumentItem{}, false
}

// Summary is the module-list row shown by the top-level selector.
type Summary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	VideoCount    int    `json:"video_count"`
	DocumentCount int    `json:"document_count"`
	QuestionCount int    `json:"question_count"`
}
