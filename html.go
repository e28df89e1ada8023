/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
)

// renderHomePage builds the landing page: the five games, each with its
// playable decks from the catalog.
func renderHomePage(cfg *Config, index *DeckIndex) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(getFavicon())
	htmlBody.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	htmlBody.WriteString(`<title>partydeck</title>`)
	htmlBody.WriteString(`<style>body{font-family:sans-serif;max-width:40rem;margin:2rem auto;padding:0 1rem;}`)
	htmlBody.WriteString(`h2{margin-bottom:.2rem;}p.desc{margin-top:0;color:#555;}`)
	htmlBody.WriteString(`ul{list-style:none;padding:0;}li{margin:.3rem 0;}</style></head><body>`)
	htmlBody.WriteString(`<h1>partydeck</h1>`)

	for _, gameType := range GameTypes {
		game := Games[gameType]

		htmlBody.WriteString(fmt.Sprintf("<h2>%s</h2>", html.EscapeString(game.Name)))
		htmlBody.WriteString(fmt.Sprintf(`<p class="desc">%s</p>`, html.EscapeString(game.Description)))
		htmlBody.WriteString("<ul>")

		for _, meta := range index.Decks {
			if meta.GameType != gameType {
				continue
			}
			htmlBody.WriteString(fmt.Sprintf(`<li><a href="%s/play/%s">%s</a> (%s, %d cards)</li>`,
				cfg.prefix,
				html.EscapeString(meta.DeckID),
				html.EscapeString(meta.Name),
				html.EscapeString(string(meta.Difficulty)),
				meta.CardCount,
			))
		}

		htmlBody.WriteString("</ul>")
	}

	htmlBody.WriteString("</body></html>")

	return htmlBody.String()
}

func serveHomePage(cfg *Config, library *Library, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		index, err := library.Index()
		if err != nil {
			errs <- err
			http.Error(w, "failed to load deck index", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		written, err := w.Write([]byte(renderHomePage(cfg, index)))
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Home page (%s) to %s in %s",
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func serveHealthCheck(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)

		_, err := w.Write([]byte("Ok\n"))
		if err != nil {
			errs <- err

			return
		}
	}
}

func serveRobots(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		data := `User-agent: Amazonbot
Disallow: /

User-agent: Applebot-Extended
Disallow: /

User-agent: Bytespider
Disallow: /

User-agent: CCBot
Disallow: /

User-agent: ClaudeBot
Disallow: /

User-agent: Google-Extended
Disallow: /

User-agent: GPTBot
Disallow: /

User-agent: meta-externalagent
Disallow: /`

		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(cfg, w)

		_, err := w.Write([]byte(data))
		if err != nil {
			errs <- err

			return
		}
	}
}
