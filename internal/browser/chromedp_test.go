package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/gold-quote-crawler/internal/config"
	"github.com/trogers1052/gold-quote-crawler/internal/crawler"
	"go.uber.org/zap/zaptest"
)

const fixturePage = `<!doctype html>
<html><body>
<div id="example-table"></div>
<button data-page="next">Next</button>
<script>
const pages = [
  [["2024.03.05","1,234,500","1,050,000","771,800","598,500"],
   ["2024.03.04","1,230,000","1,045,000","768,100","595,600"]],
  [["2024.03.03","1,220,000","1,040,000","764,400","592,700"]]
];
let current = 0;
function render() {
  const table = document.getElementById("example-table");
  table.innerHTML = "";
  for (const r of pages[current]) {
    const row = document.createElement("div");
    row.className = "tabulator-row";
    r.forEach((c, i) => {
      const cell = document.createElement("div");
      cell.className = "tabulator-cell";
      cell.textContent = c;
      if (i === 4) cell.style.display = "none";
      row.appendChild(cell);
    });
    table.appendChild(row);
  }
  const next = document.querySelector('button[data-page="next"]');
  if (current >= pages.length - 1) next.setAttribute("disabled", "");
}
document.querySelector('button[data-page="next"]').addEventListener("click", () => {
  current++;
  render();
});
setTimeout(render, 50);
</script>
</body></html>`

func TestSessionWalksFixture(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	if _, err := exec.LookPath("google-chrome"); err != nil {
		if _, err := exec.LookPath("chromium"); err != nil {
			t.Skip("chrome not installed")
		}
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(fixturePage))
	}))
	defer srv.Close()

	cfg := config.Load().Crawler
	cfg.URL = srv.URL
	cfg.InitialSettle = 0
	cfg.RenderSettle = 200 * time.Millisecond
	cfg.PageSettle = 200 * time.Millisecond
	cfg.WaitTimeout = 5 * time.Second
	cfg.SessionTimeout = time.Minute

	logger := zaptest.NewLogger(t)
	c := crawler.New(Factory(cfg, logger), cfg, logger)

	start := time.Now()
	table, stats := c.Crawl(context.Background())
	require.NotNil(t, table)
	assert.Less(t, time.Since(start), 30*time.Second, "hidden cells must not wait for visibility")
	assert.Equal(t, 3, table.Len())
	assert.Equal(t, 2, stats.Pages)
	assert.Equal(t, crawler.StopNextDisabled, stats.StopReason)
	assert.Equal(t, "2024-03-05", table.Quotes[0].Date)
	assert.True(t, decimal.NewFromInt(598500).Equal(table.Quotes[0].Sell14K375g.Decimal))
}
