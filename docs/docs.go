// Package docs registers the OpenAPI description served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/tournaments": {
            "get": {"tags": ["tournaments"], "summary": "List tournaments, optionally of one season", "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "season", "in": "query"}],
                "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["tournaments"], "summary": "Create a tournament of the season",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.CreateTournamentInput"}}],
                "responses": {"201": {"description": "Created"}, "404": {"description": "Unknown category"}, "409": {"description": "Sequence already used in the season"}, "422": {"description": "Validation error"}}}
        },
        "/tournaments/{tournamentID}": {
            "get": {"tags": ["tournaments"], "summary": "Tournament with its categories", "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}
        },
        "/tournaments/{tournamentID}/close": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["tournaments"], "summary": "Close a tournament and settle season points", "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"200": {"description": "Instance reached per competitor"}, "404": {"description": "Not found"}, "409": {"description": "Final not decided or tournament already closed"}}}
        },
        "/tournaments/{tournamentID}/results": {
            "get": {"tags": ["tournaments"], "summary": "Settlement of a closed tournament", "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Tournament not closed"}}}
        },
        "/tournaments/{tournamentID}/categories/{categoryID}/bracket": {
            "get": {"tags": ["brackets"], "summary": "Bracket view: rounds, matches and adjacency", "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "tournamentID", "in": "path", "required": true}, {"type": "integer", "name": "categoryID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Bracket not generated"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["brackets"], "summary": "Generate the elimination bracket of a tournament category", "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "tournamentID", "in": "path", "required": true}, {"type": "integer", "name": "categoryID", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Bracket exists or zones still open"}, "422": {"description": "No topology for the pair count"}}}
        },
        "/zones": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["zones"], "summary": "Create a zone and schedule its matches",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.CreateZoneInput"}}],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Pair already in another zone"}, "422": {"description": "Validation error"}}}
        },
        "/zones/{zoneID}/state": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["zones"], "summary": "Close or reopen a zone", "consumes": ["application/json"],
                "parameters": [{"type": "integer", "name": "zoneID", "in": "path", "required": true}, {"name": "input", "in": "body", "required": true, "schema": {"type": "object", "properties": {"status": {"type": "string", "enum": ["finalized", "in_progress"]}}}}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Zone has unfinished matches"}}}
        },
        "/zones/{zoneID}/tie": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["zones"], "summary": "Resolve a three-way tie by draw or tiebreak matches", "consumes": ["application/json"],
                "parameters": [{"type": "integer", "name": "zoneID", "in": "path", "required": true}, {"name": "input", "in": "body", "required": true, "schema": {"type": "object", "properties": {"method": {"type": "string", "enum": ["draw", "tiebreak"]}}}}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Zone is not a three-way tie"}}}
        },
        "/zone-matches/{matchID}/result": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["matches"], "summary": "Submit the set scores of a zone match", "consumes": ["application/json"],
                "parameters": [{"type": "integer", "name": "matchID", "in": "path", "required": true}, {"name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.submitResultRequest"}}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Match already finalized"}, "422": {"description": "Invalid score"}}}
        },
        "/bracket-matches/{matchID}/result": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["matches"], "summary": "Submit the set scores of a bracket match", "consumes": ["application/json"],
                "parameters": [{"type": "integer", "name": "matchID", "in": "path", "required": true}, {"name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.submitResultRequest"}}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Match finalized or a pair slot is still open"}, "422": {"description": "Invalid score"}}}
        },
        "/topologies/{pairCount}": {
            "get": {"tags": ["brackets"], "summary": "Zone layout and bracket shape for a pair count",
                "parameters": [{"type": "integer", "name": "pairCount", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "422": {"description": "Unsupported pair count"}}}
        }
    },
    "definitions": {
        "models.SetScore": {"type": "object", "properties": {"p1": {"type": "integer"}, "p2": {"type": "integer"}}},
        "handlers.submitResultRequest": {"type": "object", "properties": {"sets": {"type": "array", "items": {"$ref": "#/definitions/models.SetScore"}}}},
        "services.CreateTournamentInput": {"type": "object", "properties": {"name": {"type": "string"}, "sequence": {"type": "integer"}, "season": {"type": "integer"}, "category_ids": {"type": "array", "items": {"type": "integer"}}}},
        "services.CreateZoneInput": {"type": "object", "properties": {"tournament_id": {"type": "integer"}, "category_id": {"type": "integer"}, "name": {"type": "string"}, "format": {"type": "string", "enum": ["round_robin", "chained"]}, "pair_ids": {"type": "array", "items": {"type": "integer"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Padel Circuit API",
	Description:      "Zones, brackets and season points of a padel tournament circuit.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
