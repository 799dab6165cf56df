// Package ui implements the interactive catalog client using bubbletea's Elm architecture.
//
// The screen is split into a navigation bar, the active section and a status line:
//  1. Profile : the signed-in account, editable with e
//  2. My Tracks : the user's tracks with add, edit, delete and add-to-collection
//  3. Collections : collections with an expandable track panel and bulk export
//  4. Search : filtered track search
//  5. Admin : users, tracks and audit log, shown only to administrators
//  6. Artists : the shared artist list
//
// Section state lives in [app.App]; the [Model] only renders it. Controller calls
// run as commands off the update loop and report back through messages. App
// notifications, confirmation prompts and sign-out events are forwarded into the
// loop by a bridge, so a confirmation blocks its command until the user answers
// the overlay with y or n.
//
// Forms are registered with [app.Modal] when opened; a submission whose ticket no
// longer matches the open form is dropped.
package ui
