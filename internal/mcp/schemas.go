package mcp

// toolDefinitions declares the static tool registry: pure configuration
// data, injected into tools/list responses at dispatch time.
func toolDefinitions() []map[string]any {
	return []map[string]any{
		{
			"name":        "diigo_list_bookmarks",
			"description": "List bookmarks with optional filters (tags, user, sort order). Omit count to auto-paginate all.",
			"inputSchema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"user":  map[string]any{"type": "string", "description": "Username (defaults to configured user)"},
					"count": map[string]any{"type": "integer", "description": "Number to fetch (omit for all with auto-pagination)"},
					"start": map[string]any{"type": "integer", "default": 0, "description": "Start offset"},
					"sort": map[string]any{
						"type": "integer", "enum": []int{0, 1, 2, 3}, "default": 1,
						"description": "0=created, 1=updated, 2=popularity, 3=hot",
					},
					"tags": map[string]any{"type": "string", "description": "Comma-separated tags to filter"},
					"filter": map[string]any{
						"type": "string", "enum": []string{"all", "public"}, "default": "all",
						"description": "Filter by visibility",
					},
					"list_name": map[string]any{"type": "string", "description": "Filter by list name"},
				},
			},
		},
		{
			"name":        "diigo_search_bookmarks",
			"description": "Search bookmarks by title/description query. Uses client-side filtering.",
			"inputSchema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query":  map[string]any{"type": "string", "description": "Search query (matches title/description)"},
					"tags":   map[string]any{"type": "string", "description": "Comma-separated tags to filter"},
					"filter": map[string]any{"type": "string", "enum": []string{"all", "public"}, "default": "all"},
					"user":   map[string]any{"type": "string", "description": "Username (defaults to configured user)"},
				},
				"required": []string{"query"},
			},
		},
		{
			"name":        "diigo_get_bookmark",
			"description": "Get a single bookmark by URL with full details including annotations",
			"inputSchema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"url":  map[string]any{"type": "string", "description": "Bookmark URL to find"},
					"user": map[string]any{"type": "string", "description": "Username (defaults to configured user)"},
				},
				"required": []string{"url"},
			},
		},
		{
			"name":        "diigo_create_bookmark",
			"description": "Create a new bookmark",
			"inputSchema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"url":        map[string]any{"type": "string", "description": "Bookmark URL"},
					"title":      map[string]any{"type": "string", "description": "Bookmark title"},
					"desc":       map[string]any{"type": "string", "default": "", "description": "Description"},
					"tags":       map[string]any{"type": "string", "default": "", "description": "Comma-separated tags"},
					"shared":     map[string]any{"type": "boolean", "default": false, "description": "Public (true) or private (false)"},
					"read_later": map[string]any{"type": "boolean", "default": false, "description": "Mark as unread"},
				},
				"required": []string{"url", "title"},
			},
		},
		{
			"name":        "diigo_update_bookmark",
			"description": "Update an existing bookmark. Uses merge to preserve unmodified fields.",
			"inputSchema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"url":        map[string]any{"type": "string", "description": "Bookmark URL (identifier)"},
					"title":      map[string]any{"type": "string", "description": "New title"},
					"desc":       map[string]any{"type": "string", "description": "New description"},
					"tags":       map[string]any{"type": "string", "description": "New tags (comma-separated)"},
					"shared":     map[string]any{"type": "boolean", "description": "New sharing status"},
					"read_later": map[string]any{"type": "boolean", "description": "New read_later status"},
				},
				"required": []string{"url"},
			},
		},
		{
			"name":        "diigo_delete_bookmark",
			"description": "Delete a bookmark by URL",
			"inputSchema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"url":   map[string]any{"type": "string", "description": "Bookmark URL"},
					"title": map[string]any{"type": "string", "description": "Bookmark title (auto-fetched if not provided)"},
				},
				"required": []string{"url"},
			},
		},
		{
			"name":        "diigo_get_recent_bookmarks",
			"description": "Get recently updated bookmarks",
			"inputSchema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"count": map[string]any{"type": "integer", "default": 50, "description": "Number to fetch"},
					"user":  map[string]any{"type": "string", "description": "Username (defaults to configured user)"},
				},
			},
		},
		{
			"name":        "diigo_get_annotations",
			"description": "Get annotations (highlights and comments) for a specific bookmark",
			"inputSchema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"url":  map[string]any{"type": "string", "description": "Bookmark URL"},
					"user": map[string]any{"type": "string", "description": "Username (defaults to configured user)"},
				},
				"required": []string{"url"},
			},
		},
		{
			"name":        "diigo_bulk_create_bookmarks",
			"description": "Create multiple bookmarks with rate limiting",
			"inputSchema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"bookmarks": map[string]any{
						"type":        "array",
						"description": "Array of bookmark objects",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"url":        map[string]any{"type": "string"},
								"title":      map[string]any{"type": "string"},
								"desc":       map[string]any{"type": "string"},
								"tags":       map[string]any{"type": "string"},
								"shared":     map[string]any{"type": "boolean"},
								"read_later": map[string]any{"type": "boolean"},
							},
							"required": []string{"url", "title"},
						},
					},
					"delay": map[string]any{"type": "number", "default": 0.5, "description": "Delay between requests in seconds"},
				},
				"required": []string{"bookmarks"},
			},
		},
	}
}
