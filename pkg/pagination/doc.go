// Package pagination turns a query whose results span several pages into one Response.
//
// The jolpica-f1 API serves at most 100 records per page and reports limit, offset and total
// with every page. The Aggregator fetches the first page at the maximum limit, then, if
// multi-page handling is enabled, requests each following page in turn and merges them.
//
// Example usage:
//
//	agg := pagination.NewAggregator(client, pagination.MaxPages(5))
//	resp, err := agg.Fetch(ctx, jolpica.NewResource(jolpica.ResourceRaceResults,
//		jolpica.Filters{}.WithSeason(2023)))
//
// The aggregator:
//   - Returns single-page responses unchanged
//   - Fails with ErrMultiPage when multi-page handling is disabled
//   - Fails with *ExceededMaxPageCountError before fetching more than the page bound
//   - Fetches pages sequentially, each offset following the previous page
//   - Aborts on the first failed page (no partial data)
//   - Reports pages that disagree with each other as *InconsistentError
package pagination
