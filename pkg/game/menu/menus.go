package menu

import (
	"github.com/leonelquinteros/gotext"
)

// LoginMenu is shown before a session exists.
func LoginMenu() *Menu {
	return New(gotext.Get("The Dark Manor"),
		Item{ID: ItemLogin, Label: gotext.Get("Login"), Help: gotext.Get("Log in to an existing account")},
		Item{ID: ItemRegister, Label: gotext.Get("Register"), Help: gotext.Get("Create a new account")},
		Item{ID: ItemGuest, Label: gotext.Get("Play as Guest"), Help: gotext.Get("Play without saving progress")},
		Item{ID: ItemDeleteAccount, Label: gotext.Get("Delete Account"), Help: gotext.Get("Permanently remove an account and its save")},
		Item{ID: ItemQuit, Label: gotext.Get("Quit"), Help: gotext.Get("Exit the game")},
	)
}

// MainMenu is shown once a session exists.
func MainMenu() *Menu {
	return New(gotext.Get("Main Menu"),
		Item{ID: ItemStartGame, Label: gotext.Get("Start Game"), Help: gotext.Get("Enter the manor")},
		Item{ID: ItemLogout, Label: gotext.Get("Logout"), Help: gotext.Get("Return to the login screen")},
		Item{ID: ItemQuit, Label: gotext.Get("Quit"), Help: gotext.Get("Exit the game")},
	)
}

// PauseMenu is shown while the game is paused.
func PauseMenu() *Menu {
	return New(gotext.Get("Paused"),
		Item{ID: ItemContinue, Label: gotext.Get("Continue"), Help: gotext.Get("Return to the game")},
		Item{ID: ItemSaveGame, Label: gotext.Get("Save Game"), Help: gotext.Get("Save your progress now")},
		Item{ID: ItemControls, Label: gotext.Get("Controls"), Help: gotext.Get("Show the key bindings")},
		Item{ID: ItemLogout, Label: gotext.Get("Logout"), Help: gotext.Get("Save and return to the login screen")},
	)
}
