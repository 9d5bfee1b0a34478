package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestYouTubeClient_Fetch_ChannelURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("channelId") != "UC123" {
			t.Errorf("Expected channelId UC123, got %q", r.URL.Query().Get("channelId"))
		}
		if r.URL.Query().Get("maxResults") != "10" {
			t.Errorf("Expected maxResults=10, got %q", r.URL.Query().Get("maxResults"))
		}
		fmt.Fprint(w, `{"items": [
			{
				"id": {"kind": "youtube#video", "videoId": "vid-1"},
				"snippet": {
					"title": "Benchmark deep dive",
					"description": "We walk through the results",
					"channelTitle": "Example Lab",
					"publishedAt": "2025-11-09T10:00:00Z"
				}
			},
			{
				"id": {"kind": "youtube#playlist"},
				"snippet": {"title": "Not a video"}
			}
		]}`)
	}))
	defer server.Close()

	client := NewYouTubeClient("test-key", "test-agent/1.0")
	client.apiBase = server.URL

	items, err := client.Fetch(context.Background(), []string{"https://www.youtube.com/channel/UC123"})
	if err != nil {
		t.Fatalf("Expected fetch to succeed: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("Expected 1 candidate (playlist skipped), got %d", len(items))
	}

	item := items[0]
	if item.SourceType != SourceYouTube {
		t.Errorf("Expected source type %q, got %q", SourceYouTube, item.SourceType)
	}
	if item.URL != "https://www.youtube.com/watch?v=vid-1" {
		t.Errorf("Unexpected URL %q", item.URL)
	}
	if item.DedupeSeed != "yt-vid-1" {
		t.Errorf("Unexpected dedupe seed %q", item.DedupeSeed)
	}
	if item.Excerpt != "We walk through the results" || item.Content != item.Excerpt {
		t.Errorf("Expected description as excerpt and content, got %+v", item)
	}
}

func TestYouTubeClient_Fetch_HandleURLIsResolved(t *testing.T) {
	var searchCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		searchCalls++
		if r.URL.Query().Get("type") == "channel" {
			if r.URL.Query().Get("q") != "examplelab" {
				t.Errorf("Expected handle as query, got %q", r.URL.Query().Get("q"))
			}
			fmt.Fprint(w, `{"items": [{"id": {"kind": "youtube#channel"}, "snippet": {"channelId": "UC456"}}]}`)
			return
		}
		if r.URL.Query().Get("channelId") != "UC456" {
			t.Errorf("Expected resolved channel id, got %q", r.URL.Query().Get("channelId"))
		}
		fmt.Fprint(w, `{"items": []}`)
	}))
	defer server.Close()

	client := NewYouTubeClient("test-key", "test-agent/1.0")
	client.apiBase = server.URL

	if _, err := client.Fetch(context.Background(), []string{"https://www.youtube.com/@examplelab"}); err != nil {
		t.Fatalf("Expected fetch to succeed: %v", err)
	}
	if searchCalls != 2 {
		t.Errorf("Expected resolve + uploads calls, got %d", searchCalls)
	}
}

func TestYouTubeClient_Fetch_NoKeyReturnsNothing(t *testing.T) {
	client := NewYouTubeClient("", "test-agent/1.0")

	items, err := client.Fetch(context.Background(), []string{"https://www.youtube.com/channel/UC123"})
	if err != nil {
		t.Errorf("Expected no error without credentials, got %v", err)
	}
	if items != nil {
		t.Errorf("Expected no candidates without credentials, got %v", items)
	}
}
