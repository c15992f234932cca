package embeddings

import "strings"

// modelProfile describes how a model expects its input and the size of the
// vectors it returns. Retrieval models are trained with different prompts for
// queries and for the passages they should match.
type modelProfile struct {
	dimensions  int
	queryPrefix string
	document    func(title, content string) string
}

var profiles = map[string]modelProfile{
	"ai/embeddinggemma": {
		dimensions:  768,
		queryPrefix: "task: search result | query: ",
		document:    gemmaDocument,
	},
	"ai/snowflake-arctic-embed": {
		dimensions:  1024,
		queryPrefix: "Represent this sentence for searching relevant passages: ",
		document:    plainDocument,
	},
	"ai/qwen3-embedding": {
		dimensions:  2560,
		queryPrefix: "Instruct: Given a help center search query, retrieve support articles that answer it\nQuery: ",
		document:    plainDocument,
	},
}

var defaultProfile = modelProfile{dimensions: 768, document: plainDocument}

// profileFor looks a model up by name, ignoring any ":tag" suffix.
func profileFor(model string) modelProfile {
	name, _, _ := strings.Cut(model, ":")
	if p, ok := profiles[name]; ok {
		return p
	}
	return defaultProfile
}

func plainDocument(title, content string) string {
	if title == "" {
		return content
	}
	return title + "\n\n" + content
}

func gemmaDocument(title, content string) string {
	if title == "" {
		title = "none"
	}
	return "title: " + title + " | text: " + content
}

// Dimensions returns the vector size a model produces. Unknown models
// are assumed to produce 768.
func Dimensions(model string) int {
	return profileFor(model).dimensions
}

// DocumentInput formats an article for embedding with model.
func DocumentInput(model, title, content string) string {
	return profileFor(model).document(title, content)
}

// QueryInput formats a search query for embedding with model.
func QueryInput(model, query string) string {
	return profileFor(model).queryPrefix + query
}
