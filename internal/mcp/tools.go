package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var createToolDef = mcp.NewTool("capsule_create",
	mcp.WithDescription("Seal a new time capsule with a message and/or image, locked until the unlock date. Unless skip_reminder is set, a Google Calendar reminder is scheduled for the unlock instant; the capsule is stored only if scheduling succeeds."),
	mcp.WithString("message",
		mcp.Description("The message to the future. Optional when image_url is given."),
	),
	mcp.WithString("image_url",
		mcp.Description("An image as a data URL (data:image/...;base64,...). Optional when message is given."),
	),
	mcp.WithString("unlock_date",
		mcp.Required(),
		mcp.Description("RFC 3339 instant at which the capsule unlocks. Must be in the future."),
	),
	mcp.WithBoolean("skip_reminder",
		mcp.Description("Store the capsule without scheduling a calendar reminder."),
	),
)

var listToolDef = mcp.NewTool("capsule_list",
	mcp.WithDescription("List all capsules with their lock states. Locked capsules report a countdown; their message and image are withheld."),
)

var getToolDef = mcp.NewTool("capsule_get",
	mcp.WithDescription("Get a single capsule by id. The message and image are included only once the capsule has unlocked."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("The capsule id."),
	),
)

var updateToolDef = mcp.NewTool("capsule_update",
	mcp.WithDescription("Edit a capsule's message, image, or unlock date. At least one field must be given; a changed unlock date must be in the future."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("The capsule id."),
	),
	mcp.WithString("message",
		mcp.Description("Replacement message. The title is re-derived from it."),
	),
	mcp.WithString("image_url",
		mcp.Description("Replacement image data URL."),
	),
	mcp.WithString("unlock_date",
		mcp.Description("Replacement unlock instant, RFC 3339."),
	),
)

var deleteToolDef = mcp.NewTool("capsule_delete",
	mcp.WithDescription("Permanently delete a capsule by id."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("The capsule id."),
	),
)

var checkReminderToolDef = mcp.NewTool("capsule_check_reminder",
	mcp.WithDescription("Fetch the calendar event backing a capsule's reminder, verifying it still exists on the provider side. Requires a signed-in session."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("The capsule id."),
	),
)

var authStatusToolDef = mcp.NewTool("auth_status",
	mcp.WithDescription("Report the calendar session state and whether a user is signed in."),
)
