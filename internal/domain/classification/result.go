package classification

import (
	"strings"
)

// DepartmentOther is returned whenever classification cannot produce a real answer
const DepartmentOther = "Other"

// Departments lists the routing targets a report can be classified into
var Departments = []string{"Fire", "Medical", "Police", "Traffic", "Crime", "Disaster", DepartmentOther}

// Image analysis defaults
const (
	DefaultImageTitle       = "Emergency Report"
	DefaultImageType        = "Other"
	DefaultImageDescription = "Emergency situation detected"
	FailedImageDescription  = "Please provide details manually"
)

// Result is the outcome of text classification. A fallback result always
// carries DepartmentOther and the reason the upstream could not be used.
type Result struct {
	Department string `json:"department"`
	Fallback   bool   `json:"fallback"`
	Reason     string `json:"reason,omitempty"`
}

// Ok wraps a department returned by the upstream
func Ok(department string) Result {
	return Result{Department: department}
}

// Fallback is the degraded result
func Fallback(reason string) Result {
	return Result{Department: DepartmentOther, Fallback: true, Reason: reason}
}

// ImageAnalysis is the draft report derived from an image
type ImageAnalysis struct {
	Title       string `json:"title"`
	Type        string `json:"reportType"`
	Description string `json:"description"`
	Fallback    bool   `json:"fallback"`
	Reason      string `json:"reason,omitempty"`
}

// FallbackAnalysis is returned when the image could not be analysed
func FallbackAnalysis(reason string) ImageAnalysis {
	return ImageAnalysis{
		Title:       DefaultImageTitle,
		Type:        DefaultImageType,
		Description: FailedImageDescription,
		Fallback:    true,
		Reason:      reason,
	}
}

// MatchDepartment strips everything but letters from raw model output and
// matches it case-insensitively against Departments. Unknown labels map to Other.
func MatchDepartment(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	for _, dept := range Departments {
		if strings.EqualFold(dept, clean) {
			return dept
		}
	}
	return DepartmentOther
}

// ParseImageAnalysis reads the TITLE:/TYPE:/DESCRIPTION: lines of a model
// response. Missing lines take their defaults.
func ParseImageAnalysis(text string) ImageAnalysis {
	out := ImageAnalysis{
		Title:       DefaultImageTitle,
		Type:        DefaultImageType,
		Description: DefaultImageDescription,
	}
	for _, line := range strings.Split(text, "\n") {
		if v, ok := field(line, "TITLE:"); ok && out.Title == DefaultImageTitle {
			out.Title = v
		}
		if v, ok := field(line, "TYPE:"); ok && out.Type == DefaultImageType {
			out.Type = v
		}
		if v, ok := field(line, "DESCRIPTION:"); ok && out.Description == DefaultImageDescription {
			out.Description = v
		}
	}
	return out
}

// field returns the trimmed text after label, if label occurs on the line
func field(line, label string) (string, bool) {
	i := strings.Index(line, label)
	if i < 0 {
		return "", false
	}
	v := strings.TrimSpace(line[i+len(label):])
	if v == "" {
		return "", false
	}
	return v, true
}

func classifyPrompt(text string) string {
	return "Classify this emergency report for the 999 emergency service. " +
		"Strictly respond ONLY with one of these department names: " +
		strings.Join(Departments, ", ") + ". Description: " + text
}

const imagePrompt = `Analyze this emergency situation image and respond in this exact format without any asterisks or bullet points:
TITLE: Write a clear, brief title
TYPE: Choose one (Theft, Fire Outbreak, Medical Emergency, Natural Disaster, Violence, or Other)
DESCRIPTION: Write a clear, concise description`
