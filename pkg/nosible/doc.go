// Package nosible is a client for the NOSIBLE search API.
//
// A Client enforces the per-plan rate limits derived from the API key, retries
// transient network failures with exponential backoff and bounds the number of
// requests in flight. Every method is safe for concurrent use.
//
//	c, err := nosible.New(nosible.Config{APIKey: os.Getenv("NOSIBLE_API_KEY")}, logger)
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//
//	results, err := c.Search(ctx, nosible.Search{Question: "Who is buying gold?", NResults: 20})
package nosible
