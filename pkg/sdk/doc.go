// Package prospector is an in-process Go client for the People Data Labs style
// search and enrichment API.
//
// It builds injection-safe person and company queries from typed filters, bounds
// result sizes, and normalizes the loosely-typed upstream records into canonical
// Candidate and Company values.
//
//	client, _ := prospector.New(os.Getenv("PDL_API_KEY"),
//	    prospector.WithDefaultSize(25),
//	    prospector.WithRateLimit(10, 5),
//	)
//	defer client.Close()
//
//	page, _ := client.SearchPeople(ctx, prospector.PersonFilter{
//	    Country:       "canada",
//	    Role:          "engineering",
//	    MustHaveEmail: true,
//	    Skills:        []string{"python", "go"},
//	}, prospector.Page{})
//	for _, c := range page.Candidates {
//	    fmt.Println(c.FullName, c.LocationName)
//	}
//
// Pass page.ScrollToken back in Page.ScrollToken to fetch the next page.
//
// # Raw queries
//
// RunRawPeopleQuery and RunRawCompanyQuery send caller-written SQL verbatim.
// Nothing is escaped: never build that SQL from end-user input.
package prospector
