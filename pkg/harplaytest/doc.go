// Package harplaytest runs a replay server inside Go tests.
//
// A recording, either a HAR file or records built in code, is served from an
// httptest.Server that is closed when the test ends:
//
//	func TestClient(t *testing.T) {
//	    srv := harplaytest.FromHAR(t, "testdata/session.har",
//	        harplaytest.WithBehaviour(replay.SequentialOnce))
//
//	    client := myapi.New(srv.URL())
//	    if _, err := client.ListItems(ctx); err != nil {
//	        t.Fatal(err)
//	    }
//
//	    srv.AssertCalled(t, "GET", "/api/items")
//	    srv.AssertAllServed(t)
//	}
//
// Every request is recorded; the assertion helpers work on that log.
package harplaytest
