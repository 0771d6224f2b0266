package query

// stopwordList contains tokens that carry no search signal, including the
// question-phrasing words users type when addressing the search box.
var stopwordList = []string{
	"a", "an", "the", "and", "or", "but", "of", "to", "in", "on", "at",
	"by", "for", "with", "from", "into", "as", "is", "are", "was", "were",
	"be", "been", "being", "am", "do", "does", "did", "done", "has", "have",
	"had", "will", "would", "can", "could", "should", "may", "might",
	"it", "its", "he", "she", "his", "her", "him", "they", "them", "their",
	"i", "me", "my", "we", "us", "our", "you", "your",
	"this", "that", "these", "those", "there", "here",
	"what", "when", "where", "which", "who", "whom", "whose", "why", "how",
	"tell", "show", "find", "search", "give", "get", "want", "know",
	"about", "any", "some", "all", "just", "very", "really", "please",
	"episode", "episodes", "video", "videos", "clip", "moment", "time",
	"something", "anything", "things", "thing", "say", "says", "said",
	"talk", "talks", "talked", "mention", "mentions", "mentioned",
}
