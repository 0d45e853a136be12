package schema

// Default returns the registry of actions the bridge exposes. Every entry
// here is dispatchable; the dispatcher builds its handler table from this
// catalog, so adding an action means adding it exactly once.
func Default() *Registry {
	return NewRegistry(
		Action{
			Name:        "getHosts",
			Method:      "host.get",
			Description: "Retrieve configured hosts with their interfaces and status.",
			Params: map[string]Param{
				"output": {Type: "string", Description: "fields to return", Default: "extend"},
				"filter": {Type: "object", Description: "exact-match filter on host fields"},
			},
			Returns: Returns{Type: "array", Description: "matching hosts", Item: "host"},
		},
		Action{
			Name:        "getProblems",
			Method:      "problem.get",
			Description: "Retrieve current problems, most recent first.",
			Params: map[string]Param{
				"output": {Type: "string", Description: "fields to return", Default: "extend"},
				"recent": {Type: "boolean", Description: "include recently resolved problems", Default: true},
				"limit":  {Type: "integer", Description: "maximum number of problems", Default: 50},
			},
			Returns: Returns{Type: "array", Description: "active problems", Item: "problem"},
		},
		Action{
			Name:        "getItems",
			Method:      "item.get",
			Description: "Retrieve monitored items with their latest values.",
			Params: map[string]Param{
				"output":  {Type: "string", Description: "fields to return", Default: "extend"},
				"hostids": {Type: "array", Description: "restrict to these hosts"},
				"search":  {Type: "object", Description: "substring search on item fields"},
				"limit":   {Type: "integer", Description: "maximum number of items", Default: 100},
			},
			Returns: Returns{Type: "array", Description: "matching items", Item: "item"},
		},
		Action{
			Name:        "getTriggers",
			Method:      "trigger.get",
			Description: "Retrieve trigger definitions and their current state.",
			Params: map[string]Param{
				"output":    {Type: "string", Description: "fields to return", Default: "extend"},
				"only_true": {Type: "boolean", Description: "only triggers in problem state"},
				"limit":     {Type: "integer", Description: "maximum number of triggers", Default: 100},
			},
			Returns: Returns{Type: "array", Description: "matching triggers", Item: "trigger"},
		},
		Action{
			Name:        "getEvents",
			Method:      "event.get",
			Description: "Retrieve events, newest first.",
			Params: map[string]Param{
				"output":    {Type: "string", Description: "fields to return", Default: "extend"},
				"sortfield": {Type: "string", Description: "field to sort by", Default: "eventid"},
				"sortorder": {Type: "string", Description: "sort direction", Default: "DESC"},
				"limit":     {Type: "integer", Description: "maximum number of events", Default: 50},
			},
			Returns: Returns{Type: "array", Description: "matching events", Item: "event"},
		},
		Action{
			Name:        "getAlerts",
			Method:      "alert.get",
			Description: "Retrieve sent alerts (notifications), newest first.",
			Params: map[string]Param{
				"output":    {Type: "string", Description: "fields to return", Default: "extend"},
				"sortfield": {Type: "string", Description: "field to sort by", Default: "clock"},
				"sortorder": {Type: "string", Description: "sort direction", Default: "DESC"},
				"limit":     {Type: "integer", Description: "maximum number of alerts", Default: 50},
			},
			Returns: Returns{Type: "array", Description: "matching alerts", Item: "alert"},
		},
		Action{
			Name:        "getDashboards",
			Method:      "dashboard.get",
			Description: "Retrieve dashboards with their pages and widgets.",
			Params: map[string]Param{
				"output": {Type: "string", Description: "fields to return", Default: "extend"},
			},
			Returns: Returns{Type: "array", Description: "dashboards", Item: "dashboard"},
		},
		Action{
			Name:        "getHistory",
			Method:      "history.get",
			Description: "Retrieve collected history values for specific items, newest first.",
			Params: map[string]Param{
				"itemids":   {Type: "array", Description: "items to fetch history for", Required: true},
				"history":   {Type: "integer", Description: "history object type (0 float, 1 character, 2 log, 3 unsigned, 4 text)", Default: 0},
				"output":    {Type: "string", Description: "fields to return", Default: "extend"},
				"sortfield": {Type: "string", Description: "field to sort by", Default: "clock"},
				"sortorder": {Type: "string", Description: "sort direction", Default: "DESC"},
				"limit":     {Type: "integer", Description: "maximum number of values", Default: 100},
			},
			Returns: Returns{Type: "array", Description: "history values", Item: "history value"},
		},
		Action{
			Name:        "executeAction",
			Method:      "",
			Description: "Execute an arbitrary backend API method. Escape hatch for methods without a dedicated action.",
			Params: map[string]Param{
				"method": {Type: "string", Description: "backend method name, e.g. hostgroup.get", Required: true},
				"params": {Type: "object", Description: "parameters forwarded verbatim", Default: map[string]any{}},
			},
			Returns: Returns{Type: "any", Description: "whatever the backend method returns"},
		},
	)
}
