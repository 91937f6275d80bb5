package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/slashbridge/internal/dispatch"
	"github.com/keshon/slashbridge/internal/middleware"
	"github.com/keshon/slashbridge/internal/storage"
	"github.com/keshon/slashbridge/pkg/cmd"
)

func newTags(deps Deps) cmd.Command {
	store := deps.Tags

	get := cmd.New("get", func(ctx context.Context, inv *cmd.Invocation) error {
		c, err := contextOf(inv)
		if err != nil {
			return err
		}
		name, _ := inv.Value(0).(string)
		tag, err := store.GetTag(c.Source.GuildID(), name)
		if errors.Is(err, storage.ErrTagNotFound) {
			_, err = c.Reply(ctx, fmt.Sprintf("No tag called `%s`.", name))
			return err
		}
		if err != nil {
			return fmt.Errorf("failed to get tag: %w", err)
		}
		_, err = c.Send(ctx, tag.Content)
		return err
	},
		cmd.WithDescription("Show a tag"),
		cmd.WithHelp("Show a tag.\n\nArgs:\n    name: tag to show"),
		cmd.WithParams(cmd.Arg("name", cmd.Text)),
	)

	set := cmd.New("set", func(ctx context.Context, inv *cmd.Invocation) error {
		c, err := contextOf(inv)
		if err != nil {
			return err
		}
		name, _ := inv.Value(0).(string)
		content, _ := inv.Value(1).(string)
		author, _ := inv.Value(2).(*discordgo.User)

		tag := storage.Tag{Name: name, Content: content, UpdatedAt: time.Now()}
		if author != nil {
			tag.AuthorID = author.ID
		}
		if err := store.SetTag(c.Source.GuildID(), tag); err != nil {
			return fmt.Errorf("failed to save tag: %w", err)
		}
		_, err = c.Reply(ctx, fmt.Sprintf("Tag `%s` saved.", strings.ToLower(name)), dispatch.DeleteAfter(10*time.Second))
		return err
	},
		cmd.WithDescription("Create or replace a tag"),
		cmd.WithHelp(`Create or replace a tag.

Args:
    name: tag name
    content: text the tag replies with`),
		cmd.WithParams(cmd.Arg("name", cmd.Text), cmd.Arg("content", cmd.Text), cmd.Author("author")),
	)

	del := cmd.Command(cmd.New("delete", func(ctx context.Context, inv *cmd.Invocation) error {
		c, err := contextOf(inv)
		if err != nil {
			return err
		}
		name, _ := inv.Value(0).(string)
		existed, err := store.DeleteTag(c.Source.GuildID(), name)
		if err != nil {
			return fmt.Errorf("failed to delete tag: %w", err)
		}
		msg := fmt.Sprintf("Tag `%s` deleted.", name)
		if !existed {
			msg = fmt.Sprintf("No tag called `%s`.", name)
		}
		_, err = c.Reply(ctx, msg)
		return err
	},
		cmd.WithDescription("Delete a tag"),
		cmd.WithHelp("Delete a tag.\n\nArgs:\n    name: tag to delete"),
		cmd.WithParams(cmd.Arg("name", cmd.Text)),
	))
	if deps.Permissions != nil {
		del = middleware.WithUserPermissionCheck(deps.Permissions, discordgo.PermissionManageMessages)(del)
	}

	list := cmd.New("list", func(ctx context.Context, inv *cmd.Invocation) error {
		c, err := contextOf(inv)
		if err != nil {
			return err
		}
		names, err := store.ListTags(c.Source.GuildID())
		if err != nil {
			return fmt.Errorf("failed to list tags: %w", err)
		}
		desc := "No tags yet."
		if len(names) > 0 {
			desc = "`" + strings.Join(names, "`, `") + "`"
		}
		_, err = c.SendEmbed(ctx, &discordgo.MessageEmbed{Title: "Tags", Description: desc, Color: EmbedColor})
		return err
	}, cmd.WithDescription("List tags in this server"))

	return cmd.NewGroup("tag", []cmd.Command{get, set, del, list},
		cmd.WithDescription("Store and recall snippets of text"),
		cmd.WithChecks(dispatch.GuildOnly()),
	)
}
