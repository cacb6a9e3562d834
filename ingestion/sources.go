package ingestion

// SourceURLs is the fixed, ordered list of pages the batch ingests. The list
// is part of the deployment, not runtime-configurable.
var SourceURLs = []string{
	"https://en.wikipedia.org/wiki/Formula_One",
	"https://www.skysports.com/f1/news/12433/13117256/lewis-hamilton-says-move-to-ferrari-from-mercedes-doesnt-need-vindicating-amid-irritation-at-coverage",
	"https://www.formula1.com/en/latest/all",
	"https://www.forbes.com/sites/brettknight/2023/11/29/formula-1s-highest-paid-drivers",
	"https://www.autosport.com/f1/news/history-of-female-f1-drivers-including-grand",
	"https://en.wikipedia.org/wiki/2023_Formula_One_World_Championship",
	"https://en.wikipedia.org/wiki/2022_Formula_One_World_Championship",
	"https://en.wikipedia.org/wiki/List_of_Formula_One_World_Drivers%27_Champions",
	"https://en.wikipedia.org/wiki/2024_Formula_One_World_Championship",
	"https://www.formula1.com/en/results.html/2024/races.html",
	"https://www.formula1.com/en/racing/2024.html",
}
