package adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/use-agent/fahndung/config"
	"github.com/use-agent/fahndung/dedup"
	"github.com/use-agent/fahndung/models"
	"github.com/use-agent/fahndung/recency"
	"github.com/use-agent/fahndung/scraper/scrapertest"
)

func fixedNow() time.Time {
	return time.Date(2024, time.June, 15, 12, 0, 0, 0, recency.Location)
}

func testOptions() Options {
	return Options{RecrawlThreshold: 10, LoadMoreMax: 500, Now: fixedNow}
}

func find(t *testing.T, name string) Adapter {
	t.Helper()
	for _, a := range NewRegistry(testOptions(), nil).All() {
		if a.Source().Name() == name {
			return a
		}
	}
	t.Fatalf("no adapter %q", name)
	return nil
}

func daysAgo(n int) string {
	return fixedNow().AddDate(0, 0, -n).Format("02.01.2006")
}

func run(t *testing.T, a Adapter, site *scrapertest.Site, filter *dedup.Filter) ([]Result, Discovery, error) {
	t.Helper()
	page, err := site.NewPage(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	var results []Result
	disc, err := a.Run(context.Background(), page, filter, func(r Result) bool {
		results = append(results, r)
		return true
	})
	return results, disc, err
}

func records(results []Result) []*models.DraftRecord {
	var out []*models.DraftRecord
	for _, r := range results {
		if r.Record != nil {
			out = append(out, r.Record)
		}
	}
	return out
}

func bbListPage(items ...string) string {
	return `<html><body><div id="pbb-search-result-pager"><ul class="pbb-searchlist">` +
		strings.Join(items, "") + `</ul></div></body></html>`
}

func bbItem(path, date string) string {
	return fmt.Sprintf(`<li><h4><a href="%s">Fahndung</a></h4><p><span>%s <a href="/ort">Cottbus</a></span></p></li>`, path, date)
}

const bbDetailPage = `<html><body><div id="pbb-article">
	<span class="pbb-ort">Cottbus</span>
	<div class="pbb-article-text"><p><span><strong>Tatzeit: 01.06.2024</strong></span></p>
	<p>Der unbekannte Täter entwendete ein Fahrrad.</p></div>
	<dl id="pbb-metadata"><dd data-iw-field="datum">05.06.2024</dd></dl></div></body></html>`

func TestListing_EarlyTerminationOnFirstPage(t *testing.T) {
	a := find(t, "Brandenburg/wanted")
	const origin = "https://polizei.brandenburg.de"

	var items, known []string
	for i := 0; i < 12; i++ {
		path := fmt.Sprintf("/fahndung/known-%d", i)
		items = append(items, bbItem(path, daysAgo(5)))
		known = append(known, origin+path)
	}
	items = append(items, bbItem("/fahndung/new-1", daysAgo(1)))

	site := scrapertest.New().
		Page(bbWanted+bbFullResults, "<html></html>").
		Page(bbWanted+"1/1", bbListPage(items...)).
		Page(bbWanted+"2/1", bbListPage(bbItem("/fahndung/old", daysAgo(6)))).
		Page(origin+"/fahndung/new-1", bbDetailPage)

	results, disc, err := run(t, a, site, dedup.New(known))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if site.Visited(bbWanted + "2/1") {
		t.Error("page 2 was requested after the recrawl threshold was reached")
	}
	if disc.Termination != models.TerminatedRecrawl {
		t.Errorf("Termination = %q, want %q", disc.Termination, models.TerminatedRecrawl)
	}
	if disc.Known != 12 || disc.Pages != 1 {
		t.Errorf("Known = %d, Pages = %d, want 12 and 1", disc.Known, disc.Pages)
	}

	recs := records(results)
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	w := recs[0].Wanted
	if recs[0].CrawledURL != origin+"/fahndung/new-1" || w.CrimeSceneLocation != "Cottbus" {
		t.Errorf("record = %+v", recs[0])
	}
	if w.CrimeSceneDateCrawled != "01.06.2024" || w.CrimeSceneDate == nil || w.CrimeSceneDate.Day() != 1 {
		t.Errorf("crime scene date = %q / %v", w.CrimeSceneDateCrawled, w.CrimeSceneDate)
	}
	if !strings.Contains(w.Description, "Fahrrad") {
		t.Errorf("description = %q", w.Description)
	}
}

func TestListing_FailureIsolation(t *testing.T) {
	a := find(t, "Berlin/wanted")
	const origin = "https://www.berlin.de"

	var teasers string
	site := scrapertest.New()
	for i := 1; i <= 5; i++ {
		path := fmt.Sprintf("/polizei/polizeimeldungen/fahndung/%d", i)
		teasers += fmt.Sprintf(`<div class="modul-teaser"><a href="%s">Fahndung %d</a></div>`, path, i)
		if i == 3 {
			site.Fail(origin+path, errors.New("connection reset"))
			continue
		}
		site.Page(origin+path, fmt.Sprintf(`<div id="layout-grid__area--maincontent">
			<div class="text"><p>Nr. 12%d</p><p>Die Polizei sucht Zeugen zu Fall %d.</p></div></div>`, i, i))
	}
	site.Page(berlinWanted, `<div id="layout-grid__area--maincontent"><div class="modul-autoteaser">`+teasers+`</div></div>`)

	results, disc, err := run(t, a, site, dedup.Empty())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(results) != 5 || disc.Attempted != 5 {
		t.Fatalf("results = %d, attempted = %d, want 5", len(results), disc.Attempted)
	}
	if len(records(results)) != 4 {
		t.Errorf("records = %d, want 4", len(records(results)))
	}
	failed := results[2]
	if failed.Err == nil || failed.Err.Code != models.ErrCodeItemExtraction {
		t.Fatalf("item 3 result = %+v, want item extraction error", failed)
	}
	if !strings.HasSuffix(failed.URL, "/fahndung/3") {
		t.Errorf("failed URL = %q", failed.URL)
	}
	if got := results[4].Record.Wanted.Description; strings.Contains(got, "Nr.") || !strings.Contains(got, "Zeugen zu Fall 5") {
		t.Errorf("description = %q, running number not stripped", got)
	}
}

func mvPage(items ...string) string {
	return `<div class="element"><div class="resultlist">` + strings.Join(items, "") + `</div></div>`
}

func mvTeaser(path, date string) string {
	return fmt.Sprintf(`<div class="teaser"><div class="teaser_text"><h3><a href="%s">Titel</a></h3>
		<div class="teaser_meta"><span class="dtstart">%s</span></div></div></div>`, path, date)
}

func TestListing_AgeFilter(t *testing.T) {
	a := find(t, "Mecklenburg-Vorpommern/wanted")
	const origin = "https://www.polizei.mvnet.de"
	page0 := fmt.Sprintf(mvWanted, 0)

	site := scrapertest.New().
		Page(page0, mvPage(mvTeaser("/fahndung/recent", daysAgo(10)), mvTeaser("/fahndung/old", daysAgo(400)))).
		Page(fmt.Sprintf(mvWanted, 10), mvPage(mvTeaser("/fahndung/older", daysAgo(420)))).
		Page(origin+"/fahndung/recent", `<div id="page"><div class="element"><div class="absatz">
			<div class="teaser_meta"><span class="dtstart">05.06.2024</span><span>Polizeipräsidium Rostock</span></div>
			<p>Gesucht wird ein Mann wegen Betrugs.</p></div></div></div>`)

	results, disc, err := run(t, a, site, dedup.Empty())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if site.Visited(origin + "/fahndung/old") {
		t.Error("expired item was crawled")
	}
	if disc.Expired != 1 || disc.Termination != models.TerminatedExpired {
		t.Errorf("Expired = %d, Termination = %q", disc.Expired, disc.Termination)
	}
	if site.Visited(fmt.Sprintf(mvWanted, 10)) {
		t.Error("pagination continued past expired items")
	}
	recs := records(results)
	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1", len(recs))
	}
	if recs[0].CrawledFrom != models.MecklenburgVorpommern || recs[0].Wanted.CrimeSceneLocation != "Rostock" {
		t.Errorf("record = %+v / %+v", recs[0], recs[0].Wanted)
	}
}

func TestListing_UnparseableDatePassesThrough(t *testing.T) {
	a := find(t, "Mecklenburg-Vorpommern/wanted")
	const origin = "https://www.polizei.mvnet.de"

	site := scrapertest.New().
		Page(fmt.Sprintf(mvWanted, 0), mvPage(mvTeaser("/fahndung/x", "Frühjahr"))).
		Page(fmt.Sprintf(mvWanted, 10), `<div class="element"><div class="resultlist"><div class="element emptylist"></div></div></div>`).
		Page(origin+"/fahndung/x", `<div id="page"><div class="element"><div class="absatz"><p>Text</p></div></div></div>`)

	results, disc, err := run(t, a, site, dedup.Empty())
	if err != nil {
		t.Fatal(err)
	}
	if len(records(results)) != 1 || disc.Termination != models.TerminatedExhausted {
		t.Errorf("records = %d, termination = %q", len(records(results)), disc.Termination)
	}
}

func TestListing_ListingFailure(t *testing.T) {
	a := find(t, "Berlin/missing")
	site := scrapertest.New().Fail(berlinMissing, errors.New("HTTP 503"))

	results, disc, err := run(t, a, site, dedup.Empty())
	if err == nil {
		t.Fatal("Run() should fail when the listing cannot be loaded")
	}
	if models.CodeOf(err) != models.ErrCodeAdapterFailure {
		t.Errorf("code = %q", models.CodeOf(err))
	}
	if len(results) != 0 || disc.Termination != models.TerminatedFailed {
		t.Errorf("results = %d, termination = %q", len(results), disc.Termination)
	}
}

func TestBremen_InlineFingerprintRecords(t *testing.T) {
	a := find(t, "Bremen/wanted")
	entry := func(place, date, body string) string {
		return fmt.Sprintf(`<div class="entry-wrapper-1col"><p><img src="x.jpg"></p>
			<p>Ort: %s<br>Zeit: %s</p><p>%s</p><p>Hinweise an die Polizei Bremen.</p></div>`, place, date, body)
	}
	list := `<div class="centerframe"><div class="article"><div class="main_article">` +
		entry("Bremen-Walle", daysAgo(3), "Raub auf einen Kiosk in der Waller Heerstraße durch zwei Männer.") +
		entry("Bremen-Mitte", daysAgo(8), "Diebstahl einer Handtasche am Hauptbahnhof durch eine Frau mit Kinderwagen.") +
		`</div></div></div>`
	site := scrapertest.New().Page(bremenWanted, list)

	results, _, err := run(t, a, site, dedup.Empty())
	if err != nil {
		t.Fatal(err)
	}
	recs := records(results)
	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2", len(recs))
	}
	first := recs[0]
	if !strings.HasPrefix(first.CrawledURL, bremenWanted+"#") || first.SubmitTipLink != bremenWanted {
		t.Errorf("identifiers = %q / %q", first.CrawledURL, first.SubmitTipLink)
	}
	if first.Wanted.CrimeSceneLocation != "Bremen-Walle" || first.Wanted.CrimeSceneDateCrawled != daysAgo(3) {
		t.Errorf("place = %q, date = %q", first.Wanted.CrimeSceneLocation, first.Wanted.CrimeSceneDateCrawled)
	}
	if len(site.Visits()) != 1 {
		t.Errorf("visits = %v, inline records need no detail pages", site.Visits())
	}

	// A second run with the first notice stored only yields the second one.
	results, disc, err := run(t, a, site, dedup.New([]string{first.CrawledURL}))
	if err != nil {
		t.Fatal(err)
	}
	if len(records(results)) != 1 || disc.Known != 1 {
		t.Errorf("second run records = %d, known = %d", len(records(results)), disc.Known)
	}
}

func TestBayern_MontageData(t *testing.T) {
	a := find(t, "Bayern/missing")
	list := `<html><body><script>
		var montagedata = [
			{"href":"/fahndung/personen/vermisste/1.html","date":"2024-06-01","title":"Vermisst"},
			{"href":"/aktuelles/2.html","date":"2024-06-01","title":"Keine Fahndung"},
			{"href":"/fahndung/personen/vermisste/3.html","date":"2022-01-01","title":"Alt"}
		];
	</script></body></html>`
	detail := `<div class="bp-fahndung-container">
		<span class="bp-fahndung-label">Name</span> Muster
		<span class="bp-fahndung-label">Vorname</span> Erika
		<span class="bp-fahndung-label">Geburtsdatum</span> 20.07.1990
		<span class="bp-fahndung-label">Geschlecht</span> Weiblich
		<span class="bp-fahndung-label">Größe</span> ca. 165 cm
	</div>
	<div class="bp-textblock-image"><div class="hyphens">Teaser</div></div>
	<div class="bp-textblock-image"><div class="hyphens"><p>Seit dem 1. Juni wird Erika Muster vermisst.</p></div></div>`

	site := scrapertest.New().
		Page(bayernMissing, list).
		Page(bayernOrigin+"/fahndung/personen/vermisste/1.html", detail)

	results, disc, err := run(t, a, site, dedup.Empty())
	if err != nil {
		t.Fatal(err)
	}
	if disc.Candidates != 2 || disc.Expired != 1 {
		t.Errorf("candidates = %d, expired = %d", disc.Candidates, disc.Expired)
	}
	recs := records(results)
	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1", len(recs))
	}
	m := recs[0].Missing
	if m.FirstName != "Erika" || m.LastName != "Muster" || m.Gender != models.GenderFemale {
		t.Errorf("person = %+v", m)
	}
	if m.Age == nil || *m.Age != 33 || m.Height == nil || *m.Height != 165 {
		t.Errorf("age = %v, height = %v", m.Age, m.Height)
	}
	if !strings.Contains(m.Description, "wird Erika Muster vermisst") {
		t.Errorf("description = %q", m.Description)
	}
}

func TestHessen_LoadMoreAndKnownList(t *testing.T) {
	a := find(t, "Hessen/wanted")
	const origin = "https://" + hessenHost
	article := func(href string) string {
		return fmt.Sprintf(`<div><article><h2><a href="%s">Fahndung</a></h2></article></div>`, href)
	}
	page := func(button string, hrefs ...string) string {
		var b strings.Builder
		b.WriteString(`<div id="content"><div id="loadmoreContainer">`)
		for _, h := range hrefs {
			b.WriteString(article(h))
		}
		b.WriteString(`</div>` + button + `</div>`)
		return b.String()
	}
	more := `<a id="loadMoreButton" href="#">Mehr</a>`
	done := `<span id="loadMoreButton">Keine weiteren</span>`
	detail := `<div id="detail"><article><p class="dachzeile">03.06.2024 | Frankfurt</p></article>
		<div class="maincontenttext"><p>Gesucht wird ein Tatverdächtiger.</p></div></div>`

	site := scrapertest.New().
		Page(hessenKnown, page(done, "/fahndung/bekannt-1", "https://www.polizei.bayern.de/fremd")).
		Page(hessenUnknown, page(more, "/fahndung/unbekannt-1")).
		OnClick(hessenUnknown, hessenLoadMore, page(done, "/fahndung/unbekannt-1", "/fahndung/unbekannt-2")).
		Page(origin+"/fahndung/bekannt-1", detail).
		Page(origin+"/fahndung/unbekannt-1", detail).
		Page(origin+"/fahndung/unbekannt-2", detail)

	results, disc, err := run(t, a, site, dedup.Empty())
	if err != nil {
		t.Fatal(err)
	}
	recs := records(results)
	if len(recs) != 3 {
		t.Fatalf("records = %d, want 3 (foreign link must be skipped)", len(recs))
	}
	if recs[0].Wanted.IsUnknown {
		t.Error("person from the known list marked unknown")
	}
	if !recs[1].Wanted.IsUnknown || !recs[2].Wanted.IsUnknown {
		t.Error("persons from the unknown list marked known")
	}
	if recs[0].Wanted.CrimeSceneLocation != "Frankfurt" || recs[0].Wanted.CrimeSceneDateCrawled != "03.06.2024" {
		t.Errorf("place = %q, date = %q", recs[0].Wanted.CrimeSceneLocation, recs[0].Wanted.CrimeSceneDateCrawled)
	}
	if disc.Pages != 3 {
		t.Errorf("Pages = %d, want 3", disc.Pages)
	}
}

func TestHessen_PageCapKeepsLoadMore(t *testing.T) {
	o := testOptions()
	o.MaxPages = 1
	var a Adapter
	for _, ad := range NewRegistry(o, nil).All() {
		if ad.Source().Name() == "Hessen/wanted" {
			a = ad
		}
	}
	if a == nil {
		t.Fatal("no Hessen/wanted adapter")
	}

	const origin = "https://" + hessenHost
	page := func(button string, hrefs ...string) string {
		var b strings.Builder
		b.WriteString(`<div id="content"><div id="loadmoreContainer">`)
		for _, h := range hrefs {
			fmt.Fprintf(&b, `<div><article><h2><a href="%s">Fahndung</a></h2></article></div>`, h)
		}
		b.WriteString(`</div>` + button + `</div>`)
		return b.String()
	}
	more := `<a id="loadMoreButton" href="#">Mehr</a>`
	done := `<span id="loadMoreButton">Keine weiteren</span>`
	detail := `<div id="detail"><article><p class="dachzeile">03.06.2024 | Kassel</p></article>
		<div class="maincontenttext"><p>Gesucht wird eine Tatverdächtige.</p></div></div>`

	site := scrapertest.New().
		Page(hessenKnown, page(done)).
		Page(hessenUnknown, page(more, "/fahndung/u-1")).
		OnClick(hessenUnknown, hessenLoadMore,
			page(more, "/fahndung/u-1", "/fahndung/u-2"),
			page(done, "/fahndung/u-1", "/fahndung/u-2", "/fahndung/u-3")).
		Page(origin+"/fahndung/u-1", detail).
		Page(origin+"/fahndung/u-2", detail).
		Page(origin+"/fahndung/u-3", detail)

	results, _, err := run(t, a, site, dedup.Empty())
	if err != nil {
		t.Fatal(err)
	}
	if n := len(records(results)); n != 3 {
		t.Errorf("records = %d, want 3: the page cap must not limit load-more activations", n)
	}
}

func TestNRW_MixedListKeepsOwnType(t *testing.T) {
	row := func(cat, href string) string {
		return fmt.Sprintf(`<div class="views-row"><div class="related-manhunt-data">
			<span class="manhunt-cat">%s</span><span class="manhunt-title"><a href="%s">x</a></span></div></div>`, cat, href)
	}
	list := func(rows ...string) string {
		return `<div id="block-police-content"><div class="views-element-container"><div class="view-content">` +
			strings.Join(rows, "") + `</div></div></div>`
	}
	missingDetail := `<div id="block-police-content">
		<div class="intro-block"><div class="field__item"><span class="second-title">Köln - seit Mai</span></div></div>
		<div class="informationzen_zur_person"><div class="field--name-field-manhunt-missing-since"><div class="field__item">02.05.2024</div></div></div>
		<div class="beschreibung_der_person">
			<div class="field--name-field-manhunt-gender"><div class="field__item">männlich</div></div>
			<div class="field--name-field-manhunt-height"><div class="field__item">180 cm</div></div>
			<div class="field--name-field-mahunt-special-features"><div class="field__item">Brille, Tattoo am Arm</div></div>
		</div>
		<div class="body-text-wrap"><div class="text-formatted field__item"><p>Der 80-jährige ist dement.</p></div></div></div>`

	site := scrapertest.New().
		Page(fmt.Sprintf(nrwList, 0), list(
			row("Unbekannte Tatverdächtige", "/fahndung/1"),
			row("Vermisste", "/fahndung/2"),
			row("Gegenstände", "/fahndung/3"),
			row("Bekannte Tatverdächtige", "https://www.polizei.mvnet.de/x"),
		)).
		Page(fmt.Sprintf(nrwList, 1), list(row("Vermisste", "/fahndung/4"))).
		Page(fmt.Sprintf(nrwList, 2), list()).
		Page("https://polizei.nrw/fahndung/2", missingDetail).
		Page("https://polizei.nrw/fahndung/4", missingDetail)

	results, disc, err := run(t, find(t, "Nordrhein-Westfalen/missing"), site, dedup.Empty())
	if err != nil {
		t.Fatal(err)
	}
	if site.Visited("https://polizei.nrw/fahndung/1") || site.Visited("https://polizei.nrw/fahndung/3") {
		t.Error("missing adapter visited a wanted or object notice")
	}
	if disc.Pages != 3 {
		t.Errorf("Pages = %d, want 3", disc.Pages)
	}
	recs := records(results)
	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2", len(recs))
	}
	m := recs[0].Missing
	if m.LastSeenLocation != "Köln" || m.LastSeenDateCrawled != "02.05.2024" || m.Gender != models.GenderMale {
		t.Errorf("missing person = %+v", m)
	}
	if m.Height == nil || *m.Height != 180 || len(m.Appearance) != 2 {
		t.Errorf("height = %v, appearance = %v", m.Height, m.Appearance)
	}
}

func TestBerlinNews_InlineItems(t *testing.T) {
	a := find(t, "Berlin/news")
	row := func(date, href, title, place string) string {
		return fmt.Sprintf(`<li><div class="cell date">%s</div><div class="cell text"><a href="%s">%s</a>
			<span class="category">Ereignisort: %s</span></div></li>`, date, href, title, place)
	}
	list := func(rows ...string) string {
		return `<div id="layout-grid__area--maincontent"><ul class="list--tablelist">` + strings.Join(rows, "") + `</ul></div>`
	}
	site := scrapertest.New().
		Page(fmt.Sprintf(berlinPress, 1), list(
			row("14.06.2024 09:45 Uhr", "/polizei/polizeimeldungen/2024/pressemitteilung.1.php", "Einbruch in Kita", "Neukölln"),
		)).
		Page(fmt.Sprintf(berlinPress, 2), list())

	results, _, err := run(t, a, site, dedup.Empty())
	if err != nil {
		t.Fatal(err)
	}
	recs := records(results)
	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1", len(recs))
	}
	n := recs[0].News
	if n.Title != "Einbruch in Kita" || n.Location != "Neukölln" {
		t.Errorf("news = %+v", n)
	}
	if n.Link != "https://www.berlin.de/polizei/polizeimeldungen/2024/pressemitteilung.1.php" || n.Date.Hour() != 9 {
		t.Errorf("link = %q, date = %v", n.Link, n.Date)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(testOptions(), nil)
	if got := len(r.Persons()); got != 18 {
		t.Errorf("person adapters = %d, want 18", got)
	}
	if got := len(r.News()); got != 3 {
		t.Errorf("news adapters = %d, want 3", got)
	}
	names := map[string]bool{}
	for _, a := range r.All() {
		d := a.Source()
		if names[d.Name()] {
			t.Errorf("duplicate source %q", d.Name())
		}
		names[d.Name()] = true
		if !d.Jurisdiction.Valid() {
			t.Errorf("invalid jurisdiction %q", d.Jurisdiction)
		}
		if d.Retention != models.RetentionFor(d.ContentType) {
			t.Errorf("%s: retention = %v", d.Name(), d.Retention)
		}
	}

	sel := Select(r.All(), []models.Jurisdiction{models.Berlin}, []models.ContentType{models.ContentNews})
	if len(sel) != 1 || sel[0].Source().Name() != "Berlin/news" {
		t.Errorf("Select() = %v", sel)
	}
}

func TestRegistry_SourcesFileOverrides(t *testing.T) {
	off, threshold, pages := false, 25, 4
	sources := &config.SourcesFile{Sources: []config.SourceOverride{
		{Name: "Bremen/wanted", Enabled: &off},
		{Name: "Brandenburg/wanted", RecrawlThreshold: &threshold, MaxPages: &pages},
	}}
	r := NewRegistry(testOptions(), sources)

	for _, a := range r.All() {
		switch a.Source().Name() {
		case "Bremen/wanted":
			t.Error("disabled source still registered")
		case "Brandenburg/wanted":
			if a.Source().RecrawlThreshold != 25 {
				t.Errorf("threshold = %d, want 25", a.Source().RecrawlThreshold)
			}
			if l := a.(*Listing); l.MaxPages != 4 {
				t.Errorf("MaxPages = %d, want 4", l.MaxPages)
			}
		}
	}
	if len(r.All()) != 20 {
		t.Errorf("adapters = %d, want 20", len(r.All()))
	}
}
