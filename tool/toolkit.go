package tool

import "strings"

// toolkitLabels maps name fragments to display labels. Resolution prefers
// the longest fragment contained in the tool name so "googlecalendar" wins
// over "google".
var toolkitLabels = map[string]string{
	"jira":           "Jira",
	"slack":          "Slack",
	"gmail":          "Gmail",
	"github":         "GitHub",
	"google":         "Google",
	"googlecalendar": "Google Calendar",
	"googledrive":    "Google Drive",
	"googlesheets":   "Google Sheets",
	"googledocs":     "Google Docs",
	"notion":         "Notion",
	"salesforce":     "Salesforce",
	"hubspot":        "HubSpot",
	"trello":         "Trello",
	"asana":          "Asana",
	"confluence":     "Confluence",
	"zendesk":        "Zendesk",
	"linear":         "Linear",
	"discord":        "Discord",
	"twitter":        "Twitter",
	"facebook":       "Facebook",
	"linkedin":       "LinkedIn",
	"instagram":      "Instagram",
	"youtube":        "YouTube",
	"dropbox":        "Dropbox",
	"onedrive":       "OneDrive",
	"box":            "Box",
	"sharepoint":     "SharePoint",
}

// ResolveToolkit derives a display label for the toolkit a tool belongs to:
// the longest known fragment contained in the tool name, else the first
// underscore-delimited segment capitalized, else "Unknown".
func ResolveToolkit(toolName string) string {
	if toolName == "" {
		return "Unknown"
	}
	lower := strings.ToLower(toolName)
	best := ""
	label := ""
	for fragment, l := range toolkitLabels {
		if strings.Contains(lower, fragment) && len(fragment) > len(best) {
			best = fragment
			label = l
		}
	}
	if label != "" {
		return label
	}
	segment := strings.SplitN(toolName, "_", 2)[0]
	if segment == "" {
		return "Unknown"
	}
	return strings.ToUpper(segment[:1]) + strings.ToLower(segment[1:])
}
