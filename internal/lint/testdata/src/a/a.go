package a

import "net/http"

// List all widgets.
//
// Returns every widget known to the service.
//opdoc:operation
func ListWidgets(w http.ResponseWriter, r *http.Request) {}

// Get a widget.
//opdoc:operation id=widgets.Fetch tags=widgets,read
func GetWidget(w http.ResponseWriter, r *http.Request) {}

//opdoc:operation
func Undocumented(w http.ResponseWriter, r *http.Request) {} // want `Undocumented has an opdoc:operation directive but no documentation`

//opdoc:operation id=
// Fetch by ID.
func EmptyID(w http.ResponseWriter, r *http.Request) {} // want `empty id argument`

//opdoc:operation color=blue
// Colorful.
func UnknownArg(w http.ResponseWriter, r *http.Request) {} // want `unknown opdoc:operation argument "color"`

//opdoc:operation id=widgets.Fetch
// Fetch again.
func DuplicateID(w http.ResponseWriter, r *http.Request) {} // want `duplicate operation ID "widgets.Fetch"`

//opdoc:operation
type Widget struct { // want `opdoc:operation directive must be part of a function doc comment`
	Name string
}
