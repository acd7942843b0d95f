package core

import (
	"context"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"bulkops/internal/policies"
	"bulkops/internal/ports"
	"bulkops/internal/types"
)

// settingHandler copies one setting category from the parent to a child and
// returns the messages of everything that failed. The category's capability
// has already been checked for the child.
type settingHandler func(p SettingsPropagator, ctx context.Context, run *copyRun, child types.Project) []string

var settingHandlers = map[types.SettingCategory]settingHandler{
	types.SettingAttributes: SettingsPropagator.copyAttributes,
	types.SettingVersions:   SettingsPropagator.copyVersions,
	types.SettingCategories: SettingsPropagator.copyCategories,
}

// SettingsPropagator copies a parent project's selected settings into each
// of its active children. It never creates or deletes projects.
type SettingsPropagator struct {
	Store ports.StorePort
	Gate  ports.PermissionPort
}

func NewSettingsPropagator(store ports.StorePort, gate ports.PermissionPort) SettingsPropagator {
	return SettingsPropagator{Store: store, Gate: gate}
}

type copyRun struct {
	actor          types.User
	parent         types.Project
	selection      policies.SettingsSelection
	parentVersions []types.Version
	parentCats     []types.Category
}

// Propagate walks the active children of parent in store order. Errors of
// one child or one category never stop the others; only failing to list the
// children or to read the parent's content is fatal.
func (p SettingsPropagator) Propagate(ctx context.Context, actor types.User, parent types.Project, selection policies.SettingsSelection) (types.CopySettingsReport, error) {
	children, err := p.Store.ActiveChildren(ctx, parent.ID)
	if err != nil {
		return types.CopySettingsReport{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to list child projects").
			WithCause(err)
	}
	run := &copyRun{actor: actor, parent: parent, selection: selection}
	if err := p.loadParentContent(ctx, run); err != nil {
		return types.CopySettingsReport{}, err
	}

	aggregator := &ErrorAggregator{}
	for _, child := range children {
		aggregator.Add(p.copyToChild(ctx, run, child)...)
	}
	log.Ctx(ctx).Info().
		Str("project", parent.Identifier).
		Int("children", len(children)).
		Int("errors", aggregator.Len()).
		Msg("settings propagation finished")
	return types.CopySettingsReport{
		Project:  parent.Name,
		Children: len(children),
		Errors:   aggregator.Entries(),
	}, nil
}

func (p SettingsPropagator) loadParentContent(ctx context.Context, run *copyRun) error {
	var err error
	for _, category := range run.selection.Categories {
		switch category {
		case types.SettingVersions:
			run.parentVersions, err = p.Store.ProjectVersions(ctx, run.parent.ID)
		case types.SettingCategories:
			run.parentCats, err = p.Store.ProjectCategories(ctx, run.parent.ID)
		}
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg(fmt.Sprintf("failed to read %s of the parent project", category)).
				WithCause(err)
		}
	}
	return nil
}

func (p SettingsPropagator) copyToChild(ctx context.Context, run *copyRun, child types.Project) []types.UnitError {
	var out []types.UnitError
	for _, category := range run.selection.Categories {
		handler, ok := settingHandlers[category]
		if !ok {
			continue
		}
		var messages []string
		if capability := policies.CategoryCapability(category); p.Gate.Allowed(ctx, run.actor, capability, &child) {
			messages = handler(p, ctx, run, child)
		} else {
			messages = []string{policies.DenialMessage(capability)}
		}
		action := fmt.Sprintf("copying %s to %s", category, child.Name)
		for _, msg := range messages {
			out = append(out, types.UnitError{Unit: child.Identifier, Action: action, Message: msg})
		}
	}
	log.Ctx(ctx).Debug().Str("child", child.Identifier).Int("errors", len(out)).Msg("child processed")
	return out
}

func (p SettingsPropagator) copyAttributes(ctx context.Context, run *copyRun, child types.Project) []string {
	var messages []string
	patch := types.ProjectPatch{}
	parent := run.parent
	for _, field := range run.selection.Attributes {
		if capability, gated := policies.AttributeCapability(field); gated && !p.Gate.Allowed(ctx, run.actor, capability, &child) {
			messages = append(messages, policies.DenialMessage(capability))
			continue
		}
		switch field {
		case policies.AttributeDescription:
			description := parent.Description
			patch.Description = &description
		case policies.AttributePublic:
			public := parent.Public
			patch.Public = &public
		case policies.AttributeStatus:
			if parent.Status == nil || parent.Status.Empty() {
				patch.ClearStatus = true
			} else {
				status := types.ProjectStatus{Code: parent.Status.Code, Explanation: parent.Status.Explanation}
				patch.Status = &status
			}
		case policies.AttributeEnabledModules:
			patch.EnabledModules = append([]string(nil), parent.EnabledModules...)
			patch.SetModules = true
		case policies.AttributeTypes:
			patch.TypeIDs = append([]int64(nil), parent.TypeIDs...)
			patch.SetTypes = true
		case policies.AttributeCustomFields:
			patch.CustomFieldIDs = append([]int64(nil), parent.CustomFieldIDs...)
			patch.SetFields = true
		}
	}
	if patch.Empty() {
		return messages
	}
	if err := p.Store.UpdateProject(ctx, child.ID, patch); err != nil {
		messages = append(messages, errorMessages(err)...)
	}
	return messages
}

func (p SettingsPropagator) copyVersions(ctx context.Context, run *copyRun, child types.Project) []string {
	childVersions, err := p.Store.ProjectVersions(ctx, child.ID)
	if err != nil {
		return errorMessages(err)
	}
	var messages []string
	messages = append(messages, p.updateMatchingVersions(ctx, run, childVersions)...)
	if run.selection.NewVersions {
		messages = append(messages, p.createMissingVersions(ctx, run, child, childVersions)...)
	}
	return messages
}

func (p SettingsPropagator) updateMatchingVersions(ctx context.Context, run *copyRun, childVersions []types.Version) []string {
	if len(run.selection.VersionFields) == 0 {
		return nil
	}
	byName := make(map[string]types.Version, len(run.parentVersions))
	for _, version := range run.parentVersions {
		if _, ok := byName[version.Name]; !ok {
			byName[version.Name] = version
		}
	}
	var messages []string
	for _, target := range childVersions {
		source, ok := byName[target.Name]
		if !ok {
			continue
		}
		patch := versionPatch(source, run.selection)
		if patch.Empty() {
			continue
		}
		if err := p.Store.UpdateVersion(ctx, target.ID, patch); err != nil {
			messages = append(messages, errorMessages(err)...)
		}
	}
	return messages
}

func versionPatch(source types.Version, selection policies.SettingsSelection) types.VersionPatch {
	patch := types.VersionPatch{}
	if selection.HasVersionField(policies.VersionStartDate) {
		patch.StartDate = source.StartDate
		patch.SetStartDate = true
	}
	if selection.HasVersionField(policies.VersionEffectiveDate) {
		patch.EffectiveDate = source.EffectiveDate
		patch.SetEffectiveDate = true
	}
	if selection.HasVersionField(policies.VersionDescription) {
		description := source.Description
		patch.Description = &description
	}
	if selection.HasVersionField(policies.VersionStatus) {
		status := source.Status
		patch.Status = &status
	}
	return patch
}

// createMissingVersions copies parent versions that are open or locked, not
// shared with other projects and absent from the child by name.
func (p SettingsPropagator) createMissingVersions(ctx context.Context, run *copyRun, child types.Project, childVersions []types.Version) []string {
	existing := make(map[string]struct{}, len(childVersions))
	for _, version := range childVersions {
		existing[version.Name] = struct{}{}
	}
	var messages []string
	for _, source := range run.parentVersions {
		if source.Status == types.VersionStatusClosed || source.Sharing != types.VersionSharingNone {
			continue
		}
		if _, ok := existing[source.Name]; ok {
			continue
		}
		_, err := p.Store.CreateVersion(ctx, types.Version{
			ProjectID:     child.ID,
			Name:          source.Name,
			Description:   source.Description,
			StartDate:     source.StartDate,
			EffectiveDate: source.EffectiveDate,
			Status:        types.VersionStatusOpen,
			Sharing:       types.VersionSharingNone,
		})
		if err != nil {
			messages = append(messages, errorMessages(err)...)
			continue
		}
		existing[source.Name] = struct{}{}
	}
	return messages
}

func (p SettingsPropagator) copyCategories(ctx context.Context, run *copyRun, child types.Project) []string {
	if !run.selection.NewCategories {
		return nil
	}
	childCats, err := p.Store.ProjectCategories(ctx, child.ID)
	if err != nil {
		return errorMessages(err)
	}
	existing := make(map[string]struct{}, len(childCats))
	for _, category := range childCats {
		existing[category.Name] = struct{}{}
	}
	var messages []string
	for _, source := range run.parentCats {
		if _, ok := existing[source.Name]; ok {
			continue
		}
		if _, err := p.Store.CreateCategory(ctx, types.Category{ProjectID: child.ID, Name: source.Name}); err != nil {
			messages = append(messages, errorMessages(err)...)
			continue
		}
		existing[source.Name] = struct{}{}
	}
	return messages
}
