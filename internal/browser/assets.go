package browser

import _ "embed"

//go:embed assets/overlay.css
var overlayCSS string

//go:embed assets/observer.js
var observerScript string

//go:embed assets/controls.js
var controlsScript string

//go:embed assets/cards.js
var cardsScript string
