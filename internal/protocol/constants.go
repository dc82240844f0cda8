// Package protocol holds the names shared by the server and its clients.
package protocol

const (
	ToolNameListCategories      = "list_categories"
	ToolNameListManufacturers   = "list_manufacturers"
	ToolNameGetCategory         = "get_category"
	ToolNameGetManufacturer     = "get_manufacturer"
	ToolNameSearchManufacturer  = "search_manufacturer"
	ToolNameSearchSubcategories = "search_subcategories"
	ToolNameGetDatasheetURL     = "get_datasheet_url"
	ToolNameGetPartImage        = "get_part_image"
	ToolNameSearchParts         = "search_parts"
)

const (
	ErrorCodeInvalidField   = "INVALID_FIELD"
	ErrorCodeMethodNotFound = "METHOD_NOT_FOUND"
)

const (
	DefaultListenAddr = "127.0.0.1:8090"
	DefaultMCPPath    = "/mcp"

	MCPSessionHeader = "Mcp-Session-Id"
)
