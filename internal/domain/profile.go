package domain

// GitHubProfile is the slice of a GitHub account shown on public profiles.
type GitHubProfile struct {
	Login       string `json:"login"`
	Name        string `json:"name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Bio         string `json:"bio,omitempty"`
	Followers   int    `json:"followers"`
	PublicRepos int    `json:"public_repos"`
}

// PublicProfile bundles everything a visitor sees on /api/users/:username.
type PublicProfile struct {
	User     *User              `json:"user"`
	Skills   []*AIVerifiedSkill `json:"skills"`
	Showcase []*ShowcasedItem   `json:"showcase"`
	GitHub   *GitHubProfile     `json:"github,omitempty"`
}
