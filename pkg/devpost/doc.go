// Package devpost reads public project pages and the project search
// endpoint.
//
// FetchProject returns typed errors from pkg/errors; GetProject is the soft
// variant the pipeline uses, returning nil on any failure. Search paginates
// the JSON endpoint with the bounds from config.SearchConfig.
//
//	client := devpost.NewClient(cfg.Devpost, cfg.Search, log)
//	project := client.GetProject(ctx, "fridge-tracker")
//	candidates := client.Search(ctx, "smart fridge inventory")
package devpost
